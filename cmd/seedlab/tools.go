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
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/evidence"
	"github.com/zintix-labs/seedlab/sdk/layer"
	"github.com/zintix-labs/seedlab/sdk/seed"
	"github.com/zintix-labs/seedlab/sdk/spawner"
	"github.com/zintix-labs/seedlab/seedfile"
	"gopkg.in/yaml.v3"
)

func parseSeed(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errs.Malformedf("seed must be int64, got %q", s)
	}
	return v, nil
}

// seedFrom 取得 world seed：--seed 或唯一的位置參數。
// 負數被 pflag 當成 shorthand，需用 --seed=-5 或放在 -- 之後。
func seedFrom(cmd *cobra.Command, args []string, flag int64) (int64, error) {
	set := cmd.Flags().Changed("seed")
	switch {
	case set && len(args) > 0:
		return 0, errs.Malformedf("give the seed either as an argument or with --seed, not both")
	case set:
		return flag, nil
	case len(args) == 1:
		return parseSeed(args[0])
	}
	return 0, errs.Malformedf("missing seed: pass it as an argument or with --seed")
}

// readYAML 讀取 YAML（或 JSON）檔到 dst。
func readYAML(path string, dst any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(err, "read "+path)
	}
	if err := yaml.Unmarshal(b, dst); err != nil {
		return errs.MalformedWrap(err, "decode "+path)
	}
	return nil
}

func newGenerateCmd(o *rootOpts) *cobra.Command {
	g := seedlab.DefaultGenerateOptions()
	var (
		out      string
		asJSON   bool
		seedFlag int64
	)
	cmd := &cobra.Command{
		Use:   "generate [seed]",
		Short: "Write synthetic evidence sampled from a known seed",
		Example: `  seedlab generate 1234 -o ev.yaml
  seedlab generate --seed=-5119754439980850796 --next-long -o ev.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := seedFrom(cmd, args, seedFlag)
			if err != nil {
				return err
			}
			lab, closeFn, err := o.newLab()
			if err != nil {
				return err
			}
			defer closeFn()
			ev, err := lab.Generate(world, g)
			if err != nil {
				return err
			}
			if out != "" {
				return ev.Save(out)
			}
			f := evidence.FormatYAML
			if asJSON {
				f = evidence.FormatJSON
			}
			return ev.Encode(cmd.OutOrStdout(), f)
		},
	}
	fs := cmd.Flags()
	fs.Int64Var(&seedFlag, "seed", 0, "world seed (use this form for negative seeds)")
	fs.Int64Var(&g.Sampler, "sampler", g.Sampler, "seed for choosing sample positions")
	fs.IntVar(&g.SlimeRadius, "slime-radius", g.SlimeRadius, "chunk radius for slime samples")
	fs.IntVar(&g.Slime, "slime", g.Slime, "number of slime chunks")
	fs.IntVar(&g.NegativeSlime, "negative", g.NegativeSlime, "number of non-slime chunks")
	fs.IntVar(&g.BiomeRadius, "biome-radius", g.BiomeRadius, "block radius for biome samples")
	fs.IntVar(&g.BiomeSamples, "biomes", g.BiomeSamples, "number of biome samples")
	fs.BoolVar(&g.NextLong, "next-long", false, "mark the seed as produced by nextLong()")
	fs.StringVarP(&out, "out", "o", "", "evidence file (.yaml or .json); stdout when empty")
	fs.BoolVar(&asJSON, "json", false, "print JSON instead of YAML on stdout")
	return cmd
}

func newExtend48Cmd(_ *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "extend48 <seed48>...",
		Short: "List the nextLong() seeds sharing each lower 48 bits",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range args {
				v, err := parseSeed(a)
				if err != nil {
					return err
				}
				if err := seedfile.Encode(cmd.OutOrStdout(), seed.Extend48(seed.Mask48(v))); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newPopulationCmd(_ *rootOpts) *cobra.Command {
	var (
		kind   string
		extend bool
	)
	cmd := &cobra.Command{
		Use:   "population <triples>",
		Short: "Recover the 48-bit world seed from chunk population or feature seeds",
		Long: `Reads a YAML or JSON list of {seed, x, z} observations (at least three,
not all collinear) and prints every consistent 48-bit world seed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ts []seed.Triple
			if err := readYAML(args[0], &ts); err != nil {
				return err
			}
			var (
				got []int64
				err error
			)
			switch kind {
			case "population":
				got, err = seed.ChunkPopulationSeedToWorldSeed(ts)
			case "feature":
				got, err = seed.FeatureSeedToWorldSeed(ts)
			default:
				return errs.Malformedf("kind must be population or feature, got %q", kind)
			}
			if err != nil {
				return err
			}
			if extend {
				var all []int64
				for _, s := range got {
					all = append(all, seed.Extend48(s)...)
				}
				slices.Sort(all)
				got = all
			}
			return seedfile.Encode(cmd.OutOrStdout(), got)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "population", "observation kind: population|feature")
	cmd.Flags().BoolVar(&extend, "extend", false, "also expand each result with extend48")
	return cmd
}

func newSpawnersCmd(_ *rootOpts) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "spawners <positions>",
		Short: "Group spawners that can be active at the same time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ss []spawner.Spawner
			if err := readYAML(args[0], &ss); err != nil {
				return err
			}
			gs := spawner.FindMultiSpawners(ss)
			if strict {
				gs = spawner.FindMultiSpawnersStrict(ss)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			if gs == nil {
				gs = []spawner.Group{}
			}
			return enc.Encode(gs)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "require a common point within range of every member")
	return cmd
}

func newMapCmd(o *rootOpts) *cobra.Command {
	var (
		a        layer.Area
		scale    int
		reverse  bool
		seedFlag int64
	)
	cmd := &cobra.Command{
		Use:   "map [seed]",
		Short: "Print the biome ids of an area",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := seedFrom(cmd, args, seedFlag)
			if err != nil {
				return err
			}
			if a.W <= 0 || a.H <= 0 || a.W > 1024 || a.H > 1024 {
				return errs.Malformedf("width and height must be in [1, 1024]")
			}
			lab, closeFn, err := o.newLab()
			if err != nil {
				return err
			}
			defer closeFn()
			var m layer.Map
			switch scale {
			case 1:
				m, err = lab.Pipeline().Biomes(world, a)
			case 4:
				m, err = lab.Pipeline().Biomes4(world, a)
			default:
				return errs.Malformedf("scale must be 1 or 4")
			}
			if err != nil {
				return err
			}
			if reverse {
				if scale != 1 {
					return errs.Malformedf("--reverse needs --scale 1")
				}
				m = layer.ReverseVoronoi(m)
			}
			printMap(cmd.OutOrStdout(), m)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.Int64Var(&seedFlag, "seed", 0, "world seed (use this form for negative seeds)")
	fs.IntVar(&a.X, "x", 0, "left edge")
	fs.IntVar(&a.Z, "z", 0, "top edge")
	fs.IntVar(&a.W, "width", 32, "columns")
	fs.IntVar(&a.H, "height", 16, "rows")
	fs.IntVar(&scale, "scale", 1, "1 for blocks, 4 for the 1:4 river-mix grid")
	fs.BoolVar(&reverse, "reverse", false, "fold the block map back to 1:4 by majority vote")
	return cmd
}

// printMap 每列一行 biome id，最後附上出現過的 id 名稱。
func printMap(w io.Writer, m layer.Map) {
	var ids []int32
	for j := 0; j < m.H; j++ {
		for i := 0; i < m.W; i++ {
			v := m.At(i, j)
			fmt.Fprintf(w, "%4d", v)
			if !slices.Contains(ids, v) {
				ids = append(ids, v)
			}
		}
		fmt.Fprintln(w)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "%4d %s\n", id, layer.Biomes.Name(id))
	}
}
