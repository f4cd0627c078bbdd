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

// Package seedlab 是種子反推引擎的組裝入口。
//
// Lab 把純函數的 sdk（LCG、layer pipeline、slime 判定）與外部資源組合起來：
//   - 平行搜尋（errgroup）與進度條
//   - 以 badger 保存已完成 shard 的 checkpoint，中斷後可續跑
//   - prometheus 指標
//
// Lab 本身不持有可變的搜尋狀態，可在多個 goroutine 間共用。
package seedlab

import (
	"io"
	"log/slog"
	"runtime"

	"github.com/zintix-labs/seedlab/checkpoint"
	"github.com/zintix-labs/seedlab/metrics"
	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/sdk/layer"
	"github.com/zintix-labs/seedlab/sdk/seed"
)

// Version 為程式版本，同時出現在 API 首頁與 CLI。
const Version = "0.1.0"

// Lab 為搜尋入口。
type Lab struct {
	log      *slog.Logger
	workers  int
	poolSize int
	progress bool
	store    *checkpoint.Store
	metrics  *metrics.Metrics
	pipe     *layer.Pipeline
	prng     core.PRNGFactory
}

// Option 設定 Lab。
type Option func(*Lab)

// WithLogger 指定 logger；預設丟棄所有輸出。
func WithLogger(log *slog.Logger) Option {
	return func(l *Lab) {
		if log != nil {
			l.log = log
		}
	}
}

// WithWorkers 指定平行 shard 數，<= 0 時使用 GOMAXPROCS。
func WithWorkers(n int) Option {
	return func(l *Lab) { l.workers = n }
}

// WithPoolSize 指定 biome evaluator 數量，<= 0 時與 workers 相同。
func WithPoolSize(n int) Option {
	return func(l *Lab) { l.poolSize = n }
}

// WithProgress 在 stderr 顯示進度條。
func WithProgress(on bool) Option {
	return func(l *Lab) { l.progress = on }
}

func WithCheckpoint(s *checkpoint.Store) Option {
	return func(l *Lab) { l.store = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Lab) { l.metrics = m }
}

// WithPipeline 指定 biome pipeline（例如 large biomes 的 biomeSize 6）。
func WithPipeline(p *layer.Pipeline) Option {
	return func(l *Lab) {
		if p != nil {
			l.pipe = p
		}
	}
}

// WithPRNG 指定合成證據取樣所用的亂數工廠。
func WithPRNG(f core.PRNGFactory) Option {
	return func(l *Lab) {
		if f != nil {
			l.prng = f
		}
	}
}

// New 建立 Lab。
func New(opts ...Option) *Lab {
	l := &Lab{
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		pipe: layer.NewPipeline17(layer.DefaultBiomeSize),
		prng: core.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	if l.workers <= 0 {
		l.workers = runtime.GOMAXPROCS(0)
	}
	if l.poolSize <= 0 {
		l.poolSize = l.workers
	}
	return l
}

func (l *Lab) Workers() int { return l.workers }
func (l *Lab) Pipeline() *layer.Pipeline { return l.pipe }
func (l *Lab) Metrics() *metrics.Metrics { return l.metrics }
func (l *Lab) Logger() *slog.Logger { return l.log }

// Extend48 回傳低 48 bits 為 s48 且可由 nextLong() 產生的 64-bit seed（升冪）。
func (l *Lab) Extend48(s48 int64) []int64 {
	return seed.Extend48(s48)
}
