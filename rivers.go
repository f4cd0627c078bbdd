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

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/evidence"
	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/sdk/layer"
	"github.com/zintix-labs/seedlab/sdk/seed"
	"github.com/zintix-labs/seedlab/stats"
)

const (
	defaultRiverShard = 64
	// 取樣點的外框不超過此面積時一次生成整塊，否則逐點生成
	maxGroupArea = 1 << 12
	// 粗篩需要在方塊解析度上鋪一張圖，外框過大時略過粗篩
	maxCoarseArea = 1 << 18
	upperParts    = 1 << 16
)

// RiverOptions 決定 FindBiomes 的候選：
//   - Candidates 非 nil：這些 48-bit seed
//   - 否則為 [Lo, Hi) 的 48-bit seed
//
// 每個 48-bit seed 再延伸成 64-bit：next_long 時用 Extend48，否則窮舉 2^16 個高位。
type RiverOptions struct {
	Candidates []int64 `json:"candidates" yaml:"candidates"`
	Lo         int64   `json:"lo" yaml:"lo"`
	Hi         int64   `json:"hi" yaml:"hi"`
	// Coarse 開啟時先在 1:4（RiverMix）檢查每筆取樣的四個可能來源格；
	// CoarseMargin 為額外容錯，加在 ErrorMarginBiome 之上
	Coarse       bool `json:"coarse" yaml:"coarse"`
	CoarseMargin int  `json:"coarse_margin" yaml:"coarse_margin"`
	ShardSize    int  `json:"shard_size" yaml:"shard_size"`
}

type sampleGroup struct {
	area    layer.Area
	samples []evidence.Sample
}

// coarseCell 為一筆取樣在 1:4 格上可能的來源：Voronoi 放大時方塊只會取
// (px..px+1, pz..pz+1) 四格之一的值。
type coarseCell struct {
	px, pz int
	biome  int32
}

// biomeMatcher 為唯讀的比對計畫，由所有 evaluator 共用。
type biomeMatcher struct {
	groups       []sampleGroup
	margin       int
	coarse       []coarseCell
	coarseArea   layer.Area
	coarseMargin int
	useCoarse    bool
}

func newBiomeMatcher(ev *evidence.Evidence, o RiverOptions) *biomeMatcher {
	samples := ev.BiomeSamples()
	m := &biomeMatcher{
		margin: ev.Options.ErrorMarginBiome,
		// 粗篩的 miss 不會多於完整比對，容錯至少與完整比對相同
		coarseMargin: ev.Options.ErrorMarginBiome + max(o.CoarseMargin, 0),
	}
	pts := make([][2]int, len(samples))
	for i, s := range samples {
		pts[i] = [2]int{int(s.X), int(s.Z)}
	}
	box := layer.Bounds(pts)
	if box.Size() <= maxGroupArea {
		m.groups = []sampleGroup{{area: box, samples: samples}}
	} else {
		m.groups = make([]sampleGroup, len(samples))
		for i, s := range samples {
			m.groups[i] = sampleGroup{area: layer.Area{X: int(s.X), Z: int(s.Z), W: 1, H: 1}, samples: samples[i : i+1]}
		}
	}
	if !o.Coarse {
		return m
	}
	// 方塊 x 的來源格為 (x-2)>>2 或其右/下一格
	q := layer.Area{X: (box.X - 2) >> 2, Z: (box.Z - 2) >> 2}
	q.W = ((box.X+box.W-1-2)>>2) - q.X + 2
	q.H = ((box.Z+box.H-1-2)>>2) - q.Z + 2
	if q.Size() > maxCoarseArea {
		return m
	}
	m.coarse = make([]coarseCell, len(samples))
	for i, s := range samples {
		m.coarse[i] = coarseCell{px: (int(s.X) - 2) >> 2, pz: (int(s.Z) - 2) >> 2, biome: s.Biome}
	}
	m.coarseArea = q
	m.useCoarse = true
	return m
}

// reachable 回傳四個候選來源格中是否有一格的 biome 與取樣相同。
func (c coarseCell) reachable(q layer.Map) bool {
	for dz := 0; dz < 2; dz++ {
		for dx := 0; dx < 2; dx++ {
			if q.Get(c.px+dx, c.pz+dz)&255 == c.biome {
				return true
			}
		}
	}
	return false
}

// match 比對單一 64-bit seed；結束時清空 evaluator 的 cache。
func (e *evaluator) match(m *biomeMatcher, w int64) (bool, error) {
	defer e.cache.Reset()
	if m.useCoarse {
		q, err := e.cache.Biomes4(w, m.coarseArea)
		if err != nil {
			return false, err
		}
		miss := 0
		for _, c := range m.coarse {
			if !c.reachable(q) {
				if miss++; miss > m.coarseMargin {
					return false, nil
				}
			}
		}
	}
	miss := 0
	for _, g := range m.groups {
		bm, err := e.cache.Biomes(w, g.area)
		if err != nil {
			return false, err
		}
		for _, s := range g.samples {
			if bm.Get(int(s.X), int(s.Z)) != s.Biome {
				if miss++; miss > m.margin {
					return false, nil
				}
			}
		}
	}
	return true, nil
}

// expand 把 48-bit seed 延伸成要檢查的 64-bit seed。
func expand(s48 int64, nextLong bool) []int64 {
	if nextLong {
		return seed.Extend48(s48)
	}
	low := seed.Mask48(s48)
	out := make([]int64, upperParts)
	for u := range out {
		out[u] = int64(uint64(u)<<48) | low
	}
	return out
}

// FindBiomes 以 biome（含 river）取樣篩選候選 seed。
func (l *Lab) FindBiomes(ctx context.Context, ev *evidence.Evidence, o RiverOptions) (*Result, error) {
	if ev == nil {
		return nil, errs.Malformedf("nil evidence")
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	if ev.BiomeCount() == 0 {
		return nil, errs.Malformedf("evidence has no biome samples")
	}
	if o.ShardSize < 0 {
		return nil, errs.Malformedf("shard size must be >= 0, got %d", o.ShardSize)
	}
	if o.Candidates == nil && (o.Lo < 0 || o.Hi > int64(core.Mask48)+1 || o.Hi <= o.Lo) {
		return nil, errs.Malformedf("48-bit range [%d,%d) invalid", o.Lo, o.Hi)
	}
	m := newBiomeMatcher(ev, o)
	nextLong := ev.Options.NextLong

	var total uint64
	at := func(i int) int64 { return o.Candidates[i] }
	if o.Candidates != nil {
		total = uint64(len(o.Candidates))
	} else {
		total = uint64(o.Hi - o.Lo)
		at = func(i int) int64 { return o.Lo + int64(i) }
	}
	size := cmpOr(o.ShardSize, defaultRiverShard)
	mode := "rivers/range"
	if o.Candidates != nil {
		mode = "rivers/candidates"
	}
	per := 1.0
	if !nextLong {
		per = upperParts
	}
	rep := &stats.SearchReport{
		Mode:     mode,
		Space:    float64(total) * per,
		PassProb: -1,
		Fingerprint: fingerprint(struct {
			Mode    string
			Samples []evidence.Sample
			Opt     evidence.Options
			Srch    RiverOptions
		}{mode, ev.BiomeSamples(), ev.Options, o}),
	}
	shards := shardCount(total, size)
	if shards < 0 {
		return nil, errs.Malformedf("too many candidates for shard size %d", size)
	}

	pool := NewEvalPool(l.poolSize, l.pipe, l.metrics)
	defer func() {
		l.log.Debug("evaluator pool", "stats", pool.Metrics())
		pool.Close()
	}()

	j := &job{label: "rivers", report: rep, shards: shards}
	j.fn = func(ctx context.Context, s int) ([]int64, int, error) {
		lo := s * size
		hi := int(min(uint64(lo+size), total))
		var got []int64
		n := 0
		err := pool.Do(ctx, func(e *evaluator) error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for _, w := range expand(at(i), nextLong) {
					n++
					ok, err := e.match(m, w)
					if err != nil {
						return err
					}
					if ok {
						got = append(got, w)
					}
				}
			}
			return nil
		})
		return got, n, err
	}
	return l.run(ctx, j)
}
