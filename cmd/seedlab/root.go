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
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/checkpoint"
	"github.com/zintix-labs/seedlab/sdk/layer"
	"github.com/zintix-labs/seedlab/sdk/perf"
	"github.com/zintix-labs/seedlab/server/logger"
)

// rootOpts 為所有子命令共用的旗標。
type rootOpts struct {
	logMode    string
	workers    int
	pprof      string
	pprofDir   string
	checkpoint string
	progress   bool
	largeBiome bool

	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	o := new(rootOpts)
	root := &cobra.Command{
		Use:           "seedlab",
		Short:         "Recover Minecraft 1.7 world seeds from observations",
		Long:          `seedlab searches the 48-bit seed space for worlds consistent with observed slime chunks, biomes and chunk seeds.`,
		Version:       seedlab.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := logger.ParseMode(o.logMode)
			if err != nil {
				return err
			}
			if _, err := perf.ParseMode(o.pprof); err != nil {
				return err
			}
			o.log = logger.NewWriterLogger(mode, cmd.ErrOrStderr())
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&o.logMode, "log", "silence", "log mode: dev|prod|silence")
	pf.IntVarP(&o.workers, "workers", "w", 0, "parallel shards (0 = GOMAXPROCS)")
	pf.StringVar(&o.pprof, "pprof", "", "pprof: '', cpu, heap, allocs")
	pf.StringVar(&o.pprofDir, "pprof-dir", perf.DefaultDir, "directory for pprof output")
	pf.StringVar(&o.checkpoint, "checkpoint", "", "badger directory for resumable searches")
	pf.BoolVar(&o.progress, "progress", false, "show a progress bar on stderr")
	pf.BoolVar(&o.largeBiome, "large-biomes", false, "use the large biomes pipeline (biome size 6)")

	root.AddCommand(
		newGenerateCmd(o),
		newFindCmd(o),
		newRiversCmd(o),
		newExtend48Cmd(o),
		newPopulationCmd(o),
		newSpawnersCmd(o),
		newMapCmd(o),
	)
	return root
}

// newLab 依旗標組裝 Lab；回傳的 close 負責關閉 checkpoint store。
func (o *rootOpts) newLab() (*seedlab.Lab, func(), error) {
	size := layer.DefaultBiomeSize
	if o.largeBiome {
		size = layer.LargeBiomeSize
	}
	opts := []seedlab.Option{
		seedlab.WithLogger(o.log),
		seedlab.WithWorkers(o.workers),
		seedlab.WithProgress(o.progress),
		seedlab.WithPipeline(layer.NewPipeline17(size)),
	}
	closeFn := func() {}
	if o.checkpoint != "" {
		store, err := checkpoint.Open(o.checkpoint, o.log)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, seedlab.WithCheckpoint(store))
		closeFn = func() {
			if err := store.Close(); err != nil {
				o.log.Error("close checkpoint failed", slog.Any("err", err))
			}
		}
	}
	return seedlab.New(opts...), closeFn, nil
}

// profile 以 --pprof 包住子命令的執行。
func (o *rootOpts) profile(exe func() error) error {
	mode, err := perf.ParseMode(o.pprof)
	if err != nil {
		return err
	}
	return perf.Run(o.pprofDir, mode, exe)
}

// signalContext 在 Ctrl-C / SIGTERM 時取消搜尋，已完成的 shard 留在 checkpoint。
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
