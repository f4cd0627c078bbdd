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

package seedlab

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/metrics"
	"github.com/zintix-labs/seedlab/sdk/layer"
)

// evaluator 持有自己的 layer.Cache，同一時間只會被一個 goroutine 借用。
type evaluator struct {
	id    int32
	cache *layer.Cache
}

// EvalPool 管理 biome evaluator：
//  1. pool：健康可借的 evaluator。
//  2. broken：執行中 panic 或回報 fatal 錯誤的 evaluator，移出後立即補一個新的。
//
// broken 滿了代表連續故障，pool 會自行關閉，之後的 Do 一律回 fatal。
type EvalPool struct {
	pipe        *layer.Pipeline
	metrics     *metrics.Metrics
	pool        chan *evaluator
	broken      chan *evaluator
	done        chan struct{}
	closeOnce   sync.Once
	size        int
	nextID      atomic.Int32
	rebuild     atomic.Int32
	inflight    atomic.Int32
	panics      atomic.Int32
	fatals      atomic.Int32
	closeReason atomic.Value // string
}

const brokenBacklog = 32

// NewEvalPool 建立 n 個 evaluator（至少 1 個）。
func NewEvalPool(n int, p *layer.Pipeline, m *metrics.Metrics) *EvalPool {
	n = max(1, n)
	ep := &EvalPool{
		pipe:    p,
		metrics: m,
		pool:    make(chan *evaluator, n),
		broken:  make(chan *evaluator, brokenBacklog),
		done:    make(chan struct{}),
		size:    n,
	}
	ep.closeReason.Store("")
	for range n {
		ep.pool <- ep.build()
	}
	return ep
}

func (p *EvalPool) build() *evaluator {
	return &evaluator{id: p.nextID.Add(1), cache: layer.NewCache(p.pipe)}
}

func (p *EvalPool) Close() {
	p.closeWithReason("closed")
}

func (p *EvalPool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *EvalPool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		p.closeReason.Store(reason)
		close(p.done)
	})
}

func (p *EvalPool) ClosedReason() string {
	s, _ := p.closeReason.Load().(string)
	return s
}

func isFatalErr(err error) bool {
	e, ok := errs.AsErr(err)
	return ok && e.ErrLv == errs.Fatal
}

// Do 借出一個 evaluator 執行 fn。
// fn panic 或回傳 fatal 時淘汰該 evaluator 並補新的；其他錯誤原樣回傳，evaluator 歸還。
func (p *EvalPool) Do(ctx context.Context, fn func(e *evaluator) error) (err error) {
	if p.Closed() {
		return errs.NewFatal("evaluator pool closed: " + p.ClosedReason())
	}
	var e *evaluator
	select {
	case <-p.done:
		return errs.NewFatal("evaluator pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		return ctx.Err()
	case e = <-p.pool:
		p.inflight.Add(1)
	}

	defer func() {
		p.inflight.Add(-1)
		panicked := false
		if r := recover(); r != nil {
			panicked = true
			p.panics.Add(1)
			p.metrics.PoolEvent("panic")
			err = errs.NewFatal(fmt.Sprintf("evaluator %d panic: %v", e.id, r))
		}
		if p.Closed() {
			return
		}
		if !panicked && !isFatalErr(err) {
			select {
			case <-p.done:
			case p.pool <- e:
			}
			return
		}
		if !panicked {
			p.fatals.Add(1)
		}
		select {
		case p.broken <- e:
		default:
			p.closeWithReason("overwhelmed_by_failures")
			return
		}
		p.rebuild.Add(1)
		p.metrics.PoolEvent("rebuild")
		select {
		case <-p.done:
		case p.pool <- p.build():
		}
	}()

	return fn(e)
}

// EvalPoolMetrics 為拉取式快照；Available / BrokenBacklog 取自 len(chan)，併發下為近似值。
type EvalPoolMetrics struct {
	PoolSize      int    `json:"pool_size"`
	Available     int    `json:"available"`
	Inflight      int    `json:"inflight"`
	BrokenBacklog int    `json:"broken_backlog"`
	Rebuild       int    `json:"rebuild"`
	Panics        int    `json:"panics"`
	Fatals        int    `json:"fatals"`
	Closed        bool   `json:"closed"`
	CloseReason   string `json:"close_reason"`
}

func (p *EvalPool) Metrics() EvalPoolMetrics {
	return EvalPoolMetrics{
		PoolSize:      p.size,
		Available:     len(p.pool),
		Inflight:      int(p.inflight.Load()),
		BrokenBacklog: len(p.broken),
		Rebuild:       int(p.rebuild.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
	}
}
