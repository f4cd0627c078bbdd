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
	"math"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/evidence"
	"github.com/zintix-labs/seedlab/sdk/enum"
	"github.com/zintix-labs/seedlab/sdk/slime"
	"github.com/zintix-labs/seedlab/stats"
)

const (
	defaultRangeShard     = 1 << 20
	defaultCandidateShard = 1 << 16
	// 範圍大於此值時先建好低位元預篩表
	lowTableSpan = 1 << 22
	highBits     = 48 - slime.LowBits
	highHalf     = highBits / 2
	checkEvery   = 1 << 16
)

// SearchOptions 決定 FindSlime 的搜尋空間：
//   - Candidates 非 nil：只檢查這些 seed
//   - Hi > Lo：檢查 [Lo, Hi)
//   - 其他：全部 2^48 個 48-bit seed
type SearchOptions struct {
	Lo         int64   `json:"lo" yaml:"lo"`
	Hi         int64   `json:"hi" yaml:"hi"`
	Candidates []int64 `json:"candidates" yaml:"candidates"`
	ShardSize  int     `json:"shard_size" yaml:"shard_size"`
}

func (o SearchOptions) mode() string {
	switch {
	case o.Candidates != nil:
		return "slime/candidates"
	case o.Hi > o.Lo:
		return "slime/range"
	default:
		return "slime/full"
	}
}

// slimeMatcher 以預先算好的 Probe 檢查候選；正例與反例各有獨立的容錯。
type slimeMatcher struct {
	pos     []slime.Probe
	neg     []slime.Probe
	missPos int // 正例中允許「不是 slime」的數量
	missNeg int // 反例中允許「是 slime」的數量
}

func newSlimeMatcher(ev *evidence.Evidence) *slimeMatcher {
	m := &slimeMatcher{
		pos:     make([]slime.Probe, len(ev.SlimeChunks)),
		neg:     make([]slime.Probe, len(ev.NegativeSlimeChunks)),
		missPos: ev.Options.ErrorMarginSlime,
		missNeg: ev.Options.ErrorMarginSlimeNeg,
	}
	for i, c := range ev.SlimeChunks {
		m.pos[i] = slime.NewProbe(c)
	}
	for i, c := range ev.NegativeSlimeChunks {
		m.neg[i] = slime.NewProbe(c)
	}
	return m
}

// match 任一邊超過容錯即提早結束。
func (m *slimeMatcher) match(w int64) bool {
	miss := 0
	for i := range m.pos {
		if !m.pos[i].Is(w) {
			if miss++; miss > m.missPos {
				return false
			}
		}
	}
	miss = 0
	for i := range m.neg {
		if m.neg[i].Is(w) {
			if miss++; miss > m.missNeg {
				return false
			}
		}
	}
	return true
}

// lowSurvives : 只看低 18 bits 就確定不是 slime 的正例數不超過容錯。
func (m *slimeMatcher) lowSurvives(low uint64) bool {
	miss := 0
	for i := range m.pos {
		if !m.pos[i].MaySlimeLow(low) {
			if miss++; miss > m.missPos {
				return false
			}
		}
	}
	return true
}

// lowTable 回傳每個低位元組合是否可能通過。
func (m *slimeMatcher) lowTable() []bool {
	t := make([]bool, 1<<slime.LowBits)
	for low := range t {
		t[low] = m.lowSurvives(uint64(low))
	}
	return t
}

// FindSlime 依 slime chunk 證據搜尋 world seed。
//
// 全域搜尋時先以低 18 bits 預篩，每個存活的低位元組合為一個 shard，
// 再窮舉其上的 2^30 個高位元。
func (l *Lab) FindSlime(ctx context.Context, ev *evidence.Evidence, o SearchOptions) (*Result, error) {
	if ev == nil {
		return nil, errs.Malformedf("nil evidence")
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	if len(ev.SlimeChunks)+len(ev.NegativeSlimeChunks) == 0 {
		return nil, errs.Malformedf("evidence has no slime chunk observations")
	}
	if o.ShardSize < 0 {
		return nil, errs.Malformedf("shard size must be >= 0, got %d", o.ShardSize)
	}
	m := newSlimeMatcher(ev)
	rep := &stats.SearchReport{
		Mode:     o.mode(),
		PassProb: stats.SlimePassProbability(len(m.pos), len(m.neg), m.missPos, m.missNeg),
		Fingerprint: fingerprint(struct {
			Mode string
			Pos  []slime.Chunk
			Neg  []slime.Chunk
			Opt  evidence.Options
			Srch SearchOptions
		}{o.mode(), ev.SlimeChunks, ev.NegativeSlimeChunks, ev.Options, o}),
	}
	j := &job{label: "slime", report: rep}

	switch {
	case o.Candidates != nil:
		size := cmpOr(o.ShardSize, defaultCandidateShard)
		cands := o.Candidates
		rep.Space = float64(len(cands))
		j.shards = shardCount(uint64(len(cands)), size)
		j.fn = func(ctx context.Context, s int) ([]int64, int, error) {
			part := cands[s*size : min((s+1)*size, len(cands))]
			var got []int64
			for i, w := range part {
				if i%checkEvery == 0 && ctx.Err() != nil {
					return nil, i, ctx.Err()
				}
				if m.match(w) {
					got = append(got, w)
				}
			}
			return got, len(part), nil
		}

	case o.Hi > o.Lo:
		size := cmpOr(o.ShardSize, defaultRangeShard)
		span := uint64(o.Hi - o.Lo)
		rep.Space = float64(span)
		j.shards = shardCount(span, size)
		if j.shards < 0 {
			return nil, errs.Malformedf("range [%d,%d) too large for shard size %d", o.Lo, o.Hi, size)
		}
		var lows []bool
		if span >= lowTableSpan {
			lows = m.lowTable()
		}
		j.fn = func(ctx context.Context, s int) ([]int64, int, error) {
			start := o.Lo + int64(s)*int64(size)
			n := int(min(uint64(size), uint64(o.Hi-start)))
			var got []int64
			for i := 0; i < n; i++ {
				if i%checkEvery == 0 && ctx.Err() != nil {
					return nil, i, ctx.Err()
				}
				w := start + int64(i)
				if lows != nil && !lows[uint64(w)&slime.LowMask()] {
					continue
				}
				if m.match(w) {
					got = append(got, w)
				}
			}
			return got, n, nil
		}

	default:
		table := m.lowTable()
		lows := make([]int64, 0, 1<<12)
		for low, ok := range table {
			if ok {
				lows = append(lows, int64(low))
			}
		}
		rep.Space = math.Exp2(48)
		l.log.Debug("low bit prefilter", "survivors", len(lows), "of", len(table))
		// i 軸為存活的低位元，j/k 軸合成 30 bits 的高位元
		space := enum.Ints([3]int{len(lows), 1 << highHalf, 1 << (highBits - highHalf)}, [3]int{})
		j.shards = space.Steps()
		j.fn = func(ctx context.Context, s int) ([]int64, int, error) {
			var got []int64
			n := 0
			for t := range space.Step(s) {
				if n%checkEvery == 0 && ctx.Err() != nil {
					return nil, n, ctx.Err()
				}
				n++
				hi := int64(t.J)<<(highBits-highHalf) | int64(t.K)
				w := hi<<slime.LowBits | lows[t.I]
				if m.match(w) {
					got = append(got, w)
				}
			}
			return got, n, nil
		}
	}
	return l.run(ctx, j)
}

func cmpOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
