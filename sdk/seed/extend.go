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

// Package seed 處理 world seed 與各種衍生 seed（feature / population）之間的正反推。
//
// 遊戲以 new Random().nextLong() 產生 world seed，因此 64-bit seed 並非任意值：
// 它的低 48 bits 決定了大部分世界生成，高 16 bits 可由兩個 LCG step 反推出來。
package seed

import (
	"slices"

	"github.com/zintix-labs/seedlab/sdk/core"
)

// Mask48 取低 48 bits。
func Mask48(s int64) int64 {
	return int64(uint64(s) & core.Mask48)
}

// Extend48 回傳所有「由 nextLong() 產生、且低 48 bits 等於 s48」的 64-bit seed（升冪）。
//
// nextLong = (a << 32) + b，a、b 為相鄰兩次 next(32)。
// 低 32 bits 即 b，也就是第二個 state 的高 32 bits；剩下 16 bits 窮舉即可。
func Extend48(s48 int64) []int64 {
	s := uint64(s48) & core.Mask48
	hi := (s & 0xFFFFFFFF) << 16
	out := make([]int64, 0, 2)
	for lo := uint64(0); lo < 1<<16; lo++ {
		st2 := hi | lo
		st1 := core.PrevState(st2)
		a := int64(int32(st1 >> 16))
		b := int64(int32(st2 >> 16))
		v := (a << 32) + b
		if uint64(v)&core.Mask48 == s {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// WorldSeedsFromNextLong 回傳第一個 nextLong() 等於 v 的所有 48-bit world seed（升冪）。
func WorldSeedsFromNextLong(v int64) []int64 {
	b := int32(v)
	a := int32((v - int64(b)) >> 32)
	hi := uint64(uint32(a)) << 16
	var out []int64
	for lo := uint64(0); lo < 1<<16; lo++ {
		st1 := hi | lo
		if int32(core.NextState(st1)>>16) != b {
			continue
		}
		st0 := core.PrevState(st1)
		out = append(out, int64(st0^core.Multiplier)&int64(core.Mask48))
	}
	slices.Sort(out)
	return out
}

// FirstNextLong 回傳 Random(seed).nextLong()。
func FirstNextLong(seed int64) int64 {
	return core.NewRandom(seed).NextLong()
}

// IsNextLongSeed 判斷 64-bit seed 是否可能由 nextLong() 產生。
func IsNextLongSeed(s int64) bool {
	return slices.Contains(Extend48(s), s)
}
