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
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/zintix-labs/seedlab/server"
	"github.com/zintix-labs/seedlab/server/logger"
	"github.com/zintix-labs/seedlab/server/netsvr"
	"github.com/zintix-labs/seedlab/server/svrcfg"
)

// svr 以旗標組出 SvrCfg 後交給 server.Run；其餘預設值由 SvrCfg.Valid 補上。
func main() {
	cfg, err := loadConfigFromFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := server.Run(cfg); err != nil {
		os.Exit(1)
	}
}

type config struct {
	LogMode       string
	Addr          string
	Workers       int
	PoolSize      int
	Checkpoint    string
	MaxSpan       int64
	MaxCandidates int
	Timeout       time.Duration
}

func loadConfigFromFlags(args []string) (*svrcfg.SvrCfg, error) {
	cfg := new(config)
	fs := flag.NewFlagSet("svr", flag.ContinueOnError)
	fs.StringVar(&cfg.LogMode, "log", "dev", "log mode: dev|prod|silence")
	fs.StringVar(&cfg.Addr, "addr", netsvr.DefaultAddr, "listen address")
	fs.IntVar(&cfg.Workers, "workers", 0, "parallel shards per search (0 = GOMAXPROCS)")
	fs.IntVar(&cfg.PoolSize, "pool", 0, "biome evaluators per search (0 = workers)")
	fs.StringVar(&cfg.Checkpoint, "checkpoint", "", "badger directory for search checkpoints")
	fs.Int64Var(&cfg.MaxSpan, "max-span", svrcfg.DefaultMaxSpan, "largest range a request may search")
	fs.IntVar(&cfg.MaxCandidates, "max-candidates", svrcfg.DefaultMaxCandidates, "largest candidate list per request")
	fs.DurationVar(&cfg.Timeout, "timeout", svrcfg.DefaultSearchTimeout, "per-request search timeout")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	mode, err := logger.ParseMode(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	log, _ := logger.NewAsync(4096, mode)
	return &svrcfg.SvrCfg{
		Log:           log,
		Addr:          cfg.Addr,
		Workers:       cfg.Workers,
		PoolSize:      cfg.PoolSize,
		Checkpoint:    cfg.Checkpoint,
		MaxSpan:       cfg.MaxSpan,
		MaxCandidates: cfg.MaxCandidates,
		SearchTimeout: cfg.Timeout,
	}, nil
}
