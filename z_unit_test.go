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
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zintix-labs/seedlab/checkpoint"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/evidence"
	"github.com/zintix-labs/seedlab/metrics"
	"github.com/zintix-labs/seedlab/sdk/layer"
	"github.com/zintix-labs/seedlab/sdk/seed"
	"github.com/zintix-labs/seedlab/sdk/slime"
)

const truth int64 = 1234

func slimeEvidence(t *testing.T, lab *Lab) *evidence.Evidence {
	t.Helper()
	ev, err := lab.Generate(truth, GenerateOptions{Sampler: 7, SlimeRadius: 8, Slime: 8, NegativeSlime: 12})
	require.NoError(t, err)
	require.Len(t, ev.SlimeChunks, 8)
	require.Len(t, ev.NegativeSlimeChunks, 12)
	return ev
}

// bruteForce 以最直接的方式檢查每個 seed（零容錯）。
func bruteForce(ev *evidence.Evidence, seeds func(yield func(int64) bool)) []int64 {
	out := []int64{}
	for w := range seeds {
		ok := true
		for _, c := range ev.SlimeChunks {
			ok = ok && slime.IsSlimeChunk(w, c.X, c.Z)
		}
		for _, c := range ev.NegativeSlimeChunks {
			ok = ok && !slime.IsSlimeChunk(w, c.X, c.Z)
		}
		if ok {
			out = append(out, w)
		}
	}
	return out
}

func TestGenerateSlimeEvidence(t *testing.T) {
	lab := New()
	ev := slimeEvidence(t, lab)
	for _, c := range ev.SlimeChunks {
		assert.True(t, slime.IsSlimeChunk(truth, c.X, c.Z), "chunk %+v", c)
	}
	for _, c := range ev.NegativeSlimeChunks {
		assert.False(t, slime.IsSlimeChunk(truth, c.X, c.Z), "chunk %+v", c)
	}
	again, err := lab.Generate(truth, GenerateOptions{Sampler: 7, SlimeRadius: 8, Slime: 8, NegativeSlime: 12})
	require.NoError(t, err)
	assert.Equal(t, ev, again)

	_, err = lab.Generate(truth, GenerateOptions{})
	assert.True(t, errs.IsKind(err, errs.KindMalformed))
	_, err = lab.Generate(truth, GenerateOptions{Slime: -1})
	assert.True(t, errs.IsKind(err, errs.KindMalformed))
}

func TestFindSlimeRangeMatchesBruteForce(t *testing.T) {
	lab := New(WithWorkers(4))
	ev := slimeEvidence(t, lab)
	const lo, hi = 0, 1 << 14

	res, err := lab.FindSlime(context.Background(), ev, SearchOptions{Lo: lo, Hi: hi, ShardSize: 1 << 10})
	require.NoError(t, err)
	assert.Contains(t, res.Seeds, truth)
	assert.True(t, slices.IsSorted(res.Seeds))

	want := bruteForce(ev, func(yield func(int64) bool) {
		for w := int64(lo); w < hi; w++ {
			if !yield(w) {
				return
			}
		}
	})
	assert.Equal(t, want, res.Seeds)

	rep := res.Report
	assert.Equal(t, "slime/range", rep.Mode)
	assert.Equal(t, 16, rep.Shards)
	assert.Equal(t, uint64(hi-lo), rep.Scanned)
	assert.Equal(t, len(want), rep.Kept)
	assert.NotEmpty(t, rep.RunID)
	assert.Less(t, rep.ExpectedFalse, 1.0)
}

func TestFindSlimeCandidates(t *testing.T) {
	lab := New()
	ev := slimeEvidence(t, lab)
	cands := []int64{99, truth, 7, truth + 1}
	res, err := lab.FindSlime(context.Background(), ev, SearchOptions{Candidates: cands, ShardSize: 2})
	require.NoError(t, err)
	assert.Equal(t, bruteForce(ev, slices.Values(slices.Sorted(slices.Values(cands)))), res.Seeds)
	assert.Contains(t, res.Seeds, truth)

	empty, err := lab.FindSlime(context.Background(), ev, SearchOptions{Candidates: []int64{}})
	require.NoError(t, err)
	assert.NotNil(t, empty.Seeds)
	assert.Empty(t, empty.Seeds)
}

func TestFindSlimeTolerance(t *testing.T) {
	lab := New()
	ev := slimeEvidence(t, lab)
	// 把一個正例搬成反例：零容錯找不到，容錯 1 / 1 可以
	moved := ev.SlimeChunks[0]
	ev.SlimeChunks = ev.SlimeChunks[1:]
	ev.NegativeSlimeChunks = append(ev.NegativeSlimeChunks, moved)

	res, err := lab.FindSlime(context.Background(), ev, SearchOptions{Candidates: []int64{truth}})
	require.NoError(t, err)
	assert.Empty(t, res.Seeds)

	ev.Options.ErrorMarginSlimeNeg = 1
	res, err = lab.FindSlime(context.Background(), ev, SearchOptions{Candidates: []int64{truth}})
	require.NoError(t, err)
	assert.Equal(t, []int64{truth}, res.Seeds)
}

func TestLowBitPrefilterKeepsTruth(t *testing.T) {
	ev := slimeEvidence(t, New())
	m := newSlimeMatcher(ev)
	table := m.lowTable()
	assert.True(t, table[uint64(truth)&slime.LowMask()])
	kept := 0
	for _, ok := range table {
		if ok {
			kept++
		}
	}
	assert.Less(t, kept, len(table))
	assert.Greater(t, kept, 0)
}

func TestFindSlimeCheckpointResume(t *testing.T) {
	store, err := checkpoint.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()
	m := metrics.New()
	lab := New(WithCheckpoint(store), WithMetrics(m), WithWorkers(2))
	ev := slimeEvidence(t, lab)
	o := SearchOptions{Lo: 1000, Hi: 1500, ShardSize: 100}

	first, err := lab.FindSlime(context.Background(), ev, o)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Report.Resumed)
	assert.Contains(t, first.Seeds, truth)

	second, err := lab.FindSlime(context.Background(), ev, o)
	require.NoError(t, err)
	assert.Equal(t, first.Report.Shards, second.Report.Resumed)
	assert.Equal(t, uint64(0), second.Report.Scanned)
	assert.Equal(t, first.Seeds, second.Seeds)
	assert.Equal(t, first.Report.Fingerprint, second.Report.Fingerprint)

	// 不同範圍不共用 checkpoint
	third, err := lab.FindSlime(context.Background(), ev, SearchOptions{Lo: 1000, Hi: 1400, ShardSize: 100})
	require.NoError(t, err)
	assert.Equal(t, 0, third.Report.Resumed)
}

func TestFindSlimeCanceled(t *testing.T) {
	lab := New()
	ev := slimeEvidence(t, lab)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := lab.FindSlime(ctx, ev, SearchOptions{Lo: 0, Hi: 1 << 20})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindCanceled))
}

func TestFindSlimeRejects(t *testing.T) {
	lab := New()
	_, err := lab.FindSlime(context.Background(), nil, SearchOptions{})
	assert.True(t, errs.IsKind(err, errs.KindMalformed))

	ev := &evidence.Evidence{Version: "1.7"}
	ev.AddBiome(1, 0, 0)
	_, err = lab.FindSlime(context.Background(), ev, SearchOptions{})
	assert.True(t, errs.IsKind(err, errs.KindMalformed))
}

func TestFindBiomesNextLong(t *testing.T) {
	lab := New(WithWorkers(2))
	w := seed.FirstNextLong(99)
	ev, err := lab.Generate(w, GenerateOptions{Sampler: 3, BiomeRadius: 100, BiomeSamples: 12, NextLong: true})
	require.NoError(t, err)
	require.Equal(t, 12, ev.BiomeCount())

	s48 := seed.Mask48(w)
	cands := []int64{s48, s48 + 1, s48 + 2}
	res, err := lab.FindBiomes(context.Background(), ev, RiverOptions{Candidates: cands, ShardSize: 1})
	require.NoError(t, err)
	assert.Contains(t, res.Seeds, w)
	assert.True(t, slices.IsSorted(res.Seeds))
	assert.Equal(t, "rivers/candidates", res.Report.Mode)

	coarse, err := lab.FindBiomes(context.Background(), ev, RiverOptions{Candidates: cands, Coarse: true, CoarseMargin: 2})
	require.NoError(t, err)
	assert.Equal(t, res.Seeds, coarse.Seeds)
}

func TestCoarseKeepsTrueSeed(t *testing.T) {
	lab := New(WithWorkers(2))
	for i := int64(0); i < 6; i++ {
		w := seed.FirstNextLong(1000 + i)
		ev, err := lab.Generate(w, GenerateOptions{Sampler: i, BiomeRadius: 300, BiomeSamples: 40, NextLong: true})
		require.NoError(t, err)

		opt := RiverOptions{Candidates: []int64{seed.Mask48(w)}}
		full, err := lab.FindBiomes(context.Background(), ev, opt)
		require.NoError(t, err)
		require.Contains(t, full.Seeds, w)

		opt.Coarse = true
		coarse, err := lab.FindBiomes(context.Background(), ev, opt)
		require.NoError(t, err)
		assert.Contains(t, coarse.Seeds, w, "seed %d", w)
		assert.Equal(t, full.Seeds, coarse.Seeds)
	}
}

func TestCoarseCellCoversVoronoiSource(t *testing.T) {
	p := New().Pipeline()
	w := seed.FirstNextLong(7)
	a := layer.Area{X: -37, Z: 90, W: 48, H: 48}
	bm, err := p.Biomes(w, a)
	require.NoError(t, err)
	q, err := p.Biomes4(w, layer.Area{X: (a.X - 2) >> 2, Z: (a.Z - 2) >> 2, W: a.W/4 + 2, H: a.H/4 + 2})
	require.NoError(t, err)
	for z := a.Z; z < a.Z+a.H; z++ {
		for x := a.X; x < a.X+a.W; x++ {
			c := coarseCell{px: (x - 2) >> 2, pz: (z - 2) >> 2, biome: bm.Get(x, z)}
			require.True(t, c.reachable(q), "block (%d,%d)", x, z)
		}
	}
}

func TestFindBiomesRejects(t *testing.T) {
	lab := New()
	ev := slimeEvidence(t, lab)
	_, err := lab.FindBiomes(context.Background(), ev, RiverOptions{Candidates: []int64{1}})
	assert.True(t, errs.IsKind(err, errs.KindMalformed))

	ev.AddBiome(1, 0, 0)
	_, err = lab.FindBiomes(context.Background(), ev, RiverOptions{Lo: 10, Hi: 5})
	assert.True(t, errs.IsKind(err, errs.KindMalformed))

	// 取樣範圍的面積會溢位，必須在搜尋前拒絕而不是讓每個候選都不符
	ev.AddBiome(1, -1<<40, -1<<40)
	ev.AddBiome(1, 1<<40, 1<<40)
	_, err = lab.FindBiomes(context.Background(), ev, RiverOptions{Candidates: []int64{1}})
	assert.True(t, errs.IsKind(err, errs.KindMalformed))
}

func TestExpand(t *testing.T) {
	w := seed.FirstNextLong(5)
	all := expand(seed.Mask48(w), false)
	require.Len(t, all, upperParts)
	assert.Contains(t, all, w)
	for _, v := range all {
		assert.Equal(t, seed.Mask48(w), seed.Mask48(v))
	}
	assert.Contains(t, expand(seed.Mask48(w), true), w)
	assert.Equal(t, New().Extend48(seed.Mask48(w)), expand(seed.Mask48(w), true))
}

func TestEvalPoolRecovers(t *testing.T) {
	m := metrics.New()
	p := NewEvalPool(1, New().Pipeline(), m)
	ctx := context.Background()

	var firstID int32
	err := p.Do(ctx, func(e *evaluator) error {
		firstID = e.id
		panic("boom")
	})
	require.Error(t, err)
	assert.True(t, isFatalErr(err))

	st := p.Metrics()
	assert.Equal(t, 1, st.Panics)
	assert.Equal(t, 1, st.Rebuild)
	assert.Equal(t, 1, st.Available)
	assert.Equal(t, 0, st.Inflight)

	err = p.Do(ctx, func(e *evaluator) error {
		assert.NotEqual(t, firstID, e.id)
		return errs.NewFatal("state lost")
	})
	require.Error(t, err)
	assert.Equal(t, 1, p.Metrics().Fatals)
	assert.Equal(t, 2, p.Metrics().Rebuild)

	// 一般錯誤不淘汰
	warn := errs.NewWarn("bad input")
	var id int32
	require.ErrorIs(t, p.Do(ctx, func(e *evaluator) error { id = e.id; return warn }), warn)
	require.NoError(t, p.Do(ctx, func(e *evaluator) error {
		assert.Equal(t, id, e.id)
		return nil
	}))

	p.Close()
	assert.True(t, p.Closed())
	assert.Error(t, p.Do(ctx, func(*evaluator) error { return nil }))
	assert.Equal(t, "closed", p.Metrics().CloseReason)
}
