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

package svrcfg

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/server/logger"
	"github.com/zintix-labs/seedlab/server/netsvr"
)

const (
	// 單一請求允許的最大搜尋範圍（range 模式，seed 數）
	DefaultMaxSpan int64 = 1 << 28
	// 單一請求允許的最大候選數
	DefaultMaxCandidates = 1 << 20
	DefaultSearchTimeout = 5 * time.Minute
)

type SvrCfg struct {
	Log  *slog.Logger
	Addr string
	// Workers 為每個搜尋請求的平行 shard 數
	Workers int
	// PoolSize 為 biome evaluator 數量
	PoolSize int
	// Checkpoint 為 badger 目錄；空字串時不保存
	Checkpoint    string
	MaxSpan       int64
	MaxCandidates int
	SearchTimeout time.Duration
}

// Valid 驗證並補上預設值。
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if sc.Addr == "" {
		sc.Addr = netsvr.DefaultAddr
	}
	if sc.Workers < 0 || sc.PoolSize < 0 || sc.MaxSpan < 0 || sc.MaxCandidates < 0 || sc.SearchTimeout < 0 {
		return errs.Malformedf("server config values must be >= 0")
	}
	if sc.Workers == 0 {
		sc.Workers = runtime.GOMAXPROCS(0)
	}
	// 避免單一請求吃光機器
	sc.Workers = min(sc.Workers, 4*runtime.NumCPU())
	if sc.PoolSize == 0 {
		sc.PoolSize = sc.Workers
	}
	if sc.MaxSpan == 0 {
		sc.MaxSpan = DefaultMaxSpan
	}
	if sc.MaxCandidates == 0 {
		sc.MaxCandidates = DefaultMaxCandidates
	}
	if sc.SearchTimeout == 0 {
		sc.SearchTimeout = DefaultSearchTimeout
	}
	return nil
}
