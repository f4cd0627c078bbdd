// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/evidence"
	"github.com/zintix-labs/seedlab/seedfile"
	"github.com/zintix-labs/seedlab/stats"
)

// searchFlags 為 find / rivers 共用的搜尋空間與輸出旗標。
type searchFlags struct {
	lo, hi     int64
	candidates string
	all        bool
	shardSize  int
	out        string
	report     string
}

func (f *searchFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Int64Var(&f.lo, "lo", 0, "range start (inclusive)")
	fs.Int64Var(&f.hi, "hi", 0, "range end (exclusive)")
	fs.StringVarP(&f.candidates, "candidates", "c", "", "seed list file (JSON array, .zst allowed)")
	fs.BoolVar(&f.all, "all", false, "search every 48-bit seed")
	fs.IntVar(&f.shardSize, "shard-size", 0, "seeds per shard (0 = default)")
	fs.StringVarP(&f.out, "out", "o", "", "write matching seeds to this file")
	fs.StringVar(&f.report, "report", "table", "report format: table|json|yaml")
}

// space 讀取候選清單並檢查搜尋空間；全空間搜尋必須明確指定 --all。
func (f *searchFlags) space() ([]int64, error) {
	if _, err := stats.RenderFor(f.report); err != nil {
		return nil, err
	}
	if f.candidates != "" {
		return seedfile.Read(f.candidates)
	}
	if f.hi <= f.lo && !f.all {
		return nil, errs.Malformedf("give --candidates, a range --lo < --hi, or --all")
	}
	return nil, nil
}

// emit 輸出報表；table 模式且未指定 --out 時，seed 以 JSON 陣列印在報表之後。
func (f *searchFlags) emit(w io.Writer, res *seedlab.Result) error {
	if f.out != "" {
		if err := seedfile.Write(f.out, res.Seeds); err != nil {
			return err
		}
	}
	rr, err := stats.RenderFor(f.report)
	if err != nil {
		return err
	}
	if err := res.Report.WriteWith(w, rr); err != nil {
		return err
	}
	if _, ok := rr.(*stats.TableSearchReportRender); ok && f.out == "" {
		return seedfile.Encode(w, res.Seeds)
	}
	return nil
}

func newFindCmd(o *rootOpts) *cobra.Command {
	f := new(searchFlags)
	cmd := &cobra.Command{
		Use:   "find <evidence>",
		Short: "Search seeds consistent with slime chunk evidence",
		Long: `Checks every seed in the chosen space against the slime chunks and
negative slime chunks of the evidence file. Interrupted searches resume when
--checkpoint points at the same directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.profile(func() error {
				ev, err := evidence.Load(args[0])
				if err != nil {
					return err
				}
				cands, err := f.space()
				if err != nil {
					return err
				}
				lab, closeFn, err := o.newLab()
				if err != nil {
					return err
				}
				defer closeFn()

				ctx, stop := signalContext(cmd.Context())
				defer stop()
				res, err := lab.FindSlime(ctx, ev, seedlab.SearchOptions{
					Lo: f.lo, Hi: f.hi, Candidates: cands, ShardSize: f.shardSize,
				})
				if err != nil {
					return err
				}
				return f.emit(cmd.OutOrStdout(), res)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newRiversCmd(o *rootOpts) *cobra.Command {
	f := new(searchFlags)
	var (
		coarse bool
		margin int
	)
	cmd := &cobra.Command{
		Use:   "rivers <evidence>",
		Short: "Filter seeds by biome samples of the evidence",
		Long: `Evaluates the biome pipeline for every candidate and keeps the seeds whose
biomes agree with the samples. Without next_long every 48-bit seed is expanded
to its 2^16 upper parts, so pass a candidate list or a small range.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.profile(func() error {
				ev, err := evidence.Load(args[0])
				if err != nil {
					return err
				}
				cands, err := f.space()
				if err != nil {
					return err
				}
				if cands == nil && f.hi <= f.lo {
					return errs.Malformedf("rivers needs --candidates or a range")
				}
				lab, closeFn, err := o.newLab()
				if err != nil {
					return err
				}
				defer closeFn()

				ctx, stop := signalContext(cmd.Context())
				defer stop()
				res, err := lab.FindBiomes(ctx, ev, seedlab.RiverOptions{
					Candidates:   cands,
					Lo:           f.lo,
					Hi:           f.hi,
					Coarse:       coarse,
					CoarseMargin: margin,
					ShardSize:    f.shardSize,
				})
				if err != nil {
					return err
				}
				return f.emit(cmd.OutOrStdout(), res)
			})
		},
	}
	f.bind(cmd)
	cmd.Flags().BoolVar(&coarse, "coarse", false, "prefilter at 1:4 resolution before the full check")
	cmd.Flags().IntVar(&margin, "coarse-margin", 0, "mismatches allowed by the coarse prefilter")
	return cmd
}
