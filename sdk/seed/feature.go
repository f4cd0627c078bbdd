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

package seed

import (
	"slices"

	"github.com/zintix-labs/seedlab/sdk/core"
)

// Rounding 描述 nextLong() 如何被強制成奇數。
type Rounding uint8

const (
	// RoundOr1 : v | 1（1.13+ feature seed，方塊座標）
	RoundOr1 Rounding = iota
	// RoundHalf : v / 2 * 2 + 1，Java 截斷除法（1.7 population seed，區塊座標）
	RoundHalf
)

func (r Rounding) apply(v int64) int64 {
	if r == RoundHalf {
		return v/2*2 + 1
	}
	return v | 1
}

// unround 回傳 apply 後等於 m 的所有原值（已正向驗證）。
func (r Rounding) unround(m int64) []int64 {
	var cands []int64
	if r == RoundHalf {
		cands = []int64{m - 2, m - 1, m}
	} else {
		cands = []int64{m - 1, m}
	}
	out := cands[:0]
	for _, v := range cands {
		if r.apply(v) == m {
			out = append(out, v)
		}
	}
	return out
}

// Multipliers 回傳 Random(world) 依 rounding 產生的 (m, n)。
func (r Rounding) Multipliers(world int64) (int64, int64) {
	rnd := core.NewRandom(world)
	m := r.apply(rnd.NextLong())
	n := r.apply(rnd.NextLong())
	return m, n
}

// FeatureSeed = (x*m + z*n) ^ world，m、n 以 |1 取奇數，x、z 為方塊座標。
func FeatureSeed(world int64, x, z int64) int64 {
	m, n := RoundOr1.Multipliers(world)
	return (x*m + z*n) ^ world
}

// PopulationSeed = (cx*m + cz*n) ^ world，m、n 以 /2*2+1 取奇數，cx、cz 為區塊座標。
func PopulationSeed(world int64, cx, cz int64) int64 {
	m, n := RoundHalf.Multipliers(world)
	return (cx*m + cz*n) ^ world
}

// PopulationSeed48 只保證低 48 bits 正確（高 bits 未定義，以 0 表示）。
func PopulationSeed48(world int64, cx, cz int64) int64 {
	return Mask48(PopulationSeed(world, cx, cz))
}

// PopulationSeed48Algebraic 與 PopulationSeed48 等價，但直接在 LCG state 上推導：
// 低 48 bits 的乘加只依賴 m、n 的低 48 bits，而 m、n 的低 48 bits 只依賴
// 四個連續 state 的高 32 bits，不必組出完整的 64-bit nextLong。
func PopulationSeed48Algebraic(world int64, cx, cz int64) int64 {
	s0 := core.Scramble(world)
	s1 := core.NextState(s0)
	s2 := core.NextState(s1)
	s3 := core.NextState(s2)
	s4 := core.NextState(s3)
	m := roundHalfFromStates(s1, s2)
	n := roundHalfFromStates(s3, s4)
	mask := core.Mask48
	return int64((uint64(cx)*m + uint64(cz)*n ^ uint64(world)) & mask)
}

// roundHalfFromStates 由兩個 state 組出 v/2*2+1 的低 48 bits。
// v/2*2 在 v 為負奇數時等於 v+1，其餘等於 v &^ 1。
func roundHalfFromStates(hiState, loState uint64) uint64 {
	a := int32(hiState >> 16)
	b := int32(loState >> 16)
	v := uint64(int64(a)<<32) + uint64(int64(b))
	neg := v>>63 == 1
	odd := v&1 == 1
	if neg && odd {
		v += 2
	} else {
		v = v&^1 | 1
	}
	return v & core.Mask48
}

// UnroundOr1 回傳 v|1 == m 的所有 v。
func UnroundOr1(m int64) []int64 { return RoundOr1.unround(m) }

// UnroundHalf 回傳 v/2*2+1 == m 的所有 v（m == 1 時為 {-1, 0, 1}）。
func UnroundHalf(m int64) []int64 { return RoundHalf.unround(m) }

// SeedsFromMultiplier 由單一 rounded multiplier（第一個 nextLong）反推 world seed 候選集。
func (r Rounding) SeedsFromMultiplier(m int64) []int64 {
	var out []int64
	for _, v := range r.unround(m) {
		out = append(out, WorldSeedsFromNextLong(v)...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// SeedsFromPair 以兩個 rounded multipliers (m, n) 過濾候選集；真值一定在其中。
func (r Rounding) SeedsFromPair(m, n int64) []int64 {
	var out []int64
	for _, w := range r.SeedsFromMultiplier(m) {
		if gm, gn := r.Multipliers(w); gm == m && gn == n {
			out = append(out, w)
		}
	}
	return out
}

// FeatureSeedToWorldSeeds 由 feature seed 的 multiplier m 反推 48-bit world seed 候選集。
func FeatureSeedToWorldSeeds(m int64) []int64 { return RoundOr1.SeedsFromMultiplier(m) }

// PopulationSeedToWorldSeeds 同上，1.7 rounding。
func PopulationSeedToWorldSeeds(m int64) []int64 { return RoundHalf.SeedsFromMultiplier(m) }
