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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/stats"
)

// Result 為一次搜尋的結果；Seeds 升冪，找不到時為空 slice。
type Result struct {
	Seeds  []int64
	Report *stats.SearchReport
}

// shardFn 處理第 shard 個分片，回傳符合的 seed 與實際評估數。
type shardFn func(ctx context.Context, shard int) (seeds []int64, scanned int, err error)

// job 描述一次分片搜尋。
type job struct {
	label  string // metrics label
	report *stats.SearchReport
	shards int
	fn     shardFn
}

// fingerprint 由搜尋輸入算出 checkpoint 的 run key；輸入相同才會續跑。
func fingerprint(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// 只會傳入可序列化的內部結構
		panic(err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:16])
}

// run 以 errgroup 平行跑所有 shard。
// 已在 checkpoint 中完成的 shard 直接略過，最後結果以 checkpoint 為準。
func (l *Lab) run(ctx context.Context, j *job) (*Result, error) {
	rep := j.report
	rep.RunID = uuid.NewString()
	rep.Shards = j.shards
	l.log.Info("search started", "run", rep.RunID, "mode", rep.Mode, "shards", j.shards, "fingerprint", rep.Fingerprint)

	bar := pb.StartNew(j.shards)
	if !l.progress {
		bar.SetWriter(io.Discard)
	}

	var (
		mu      sync.Mutex
		found   []int64
		scanned atomic.Uint64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	err := func() error {
		for s := 0; s < j.shards; s++ {
			if l.store != nil {
				done, err := l.store.Done(rep.Fingerprint, s)
				if err != nil {
					return err
				}
				if done {
					rep.Resumed++
					bar.Increment()
					continue
				}
			}
			if gctx.Err() != nil {
				return nil
			}
			g.Go(func() error {
				start := time.Now()
				got, n, err := j.fn(gctx, s)
				scanned.Add(uint64(n))
				l.metrics.Scanned(j.label, n)
				if err != nil {
					return err
				}
				l.metrics.Shard(j.label, time.Since(start))
				if l.store != nil {
					if err := l.store.Mark(rep.Fingerprint, s, got); err != nil {
						return err
					}
				}
				mu.Lock()
				found = append(found, got...)
				mu.Unlock()
				bar.Increment()
				l.log.Debug("shard done", "run", rep.RunID, "shard", s, "scanned", n, "kept", len(got))
				return nil
			})
		}
		return nil
	}()
	if werr := g.Wait(); err == nil {
		err = werr
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		if ctx.Err() != nil {
			l.metrics.Search(j.label, "canceled")
			l.log.Warn("search canceled", "run", rep.RunID, "mode", rep.Mode)
			return nil, errs.Canceled(ctx.Err(), rep.Mode+" search canceled")
		}
		l.metrics.Search(j.label, "error")
		return nil, errs.Wrap(err, rep.Mode+" search failed")
	}

	if l.store != nil {
		all, err := l.store.Results(rep.Fingerprint)
		if err != nil {
			l.metrics.Search(j.label, "error")
			return nil, err
		}
		found = append(found, all...)
	}
	slices.Sort(found)
	found = slices.Compact(found)
	if found == nil {
		found = []int64{}
	}

	rep.Scanned = scanned.Load()
	rep.Seeds = found
	rep.Done(used)
	l.metrics.Kept(j.label, len(found))
	l.metrics.Search(j.label, "ok")
	l.log.Info("search finished", "run", rep.RunID, "mode", rep.Mode, "kept", rep.Kept, "scanned", rep.Scanned, "resumed", rep.Resumed, "used", used)
	return &Result{Seeds: found, Report: rep}, nil
}

// shardCount : ceil(span / size)，超過上限回傳 -1。
func shardCount(span uint64, size int) int {
	n := (span + uint64(size) - 1) / uint64(size)
	if n > maxShards {
		return -1
	}
	return int(n)
}

const maxShards = 1 << 30
