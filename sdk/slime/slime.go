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

// Package slime 實作 slime chunk 判定與低位元預篩。
package slime

import "github.com/zintix-labs/seedlab/sdk/core"

const (
	chunkXor = 987234911
	// LowBits : 第一次 next(31) 的奇偶只由 seed 的低 18 bits 決定
	LowBits = 18
	lowMask = 1<<LowBits - 1
)

// Chunk 為區塊座標。
type Chunk struct {
	X int32 `json:"x" yaml:"x"`
	Z int32 `json:"z" yaml:"z"`
}

// offset 為座標項；乘法刻意在 int32 下溢位，與遊戲一致。
func offset(x, z int32) int64 {
	return int64(x*x*4987142) +
		int64(x*5947611) +
		int64(z*z)*4392871 +
		int64(z*389711)
}

// ChunkSeed 回傳 (x, z) 處 slime 判定所用的 seed。
func ChunkSeed(world int64, x, z int32) int64 {
	return (world + offset(x, z)) ^ chunkXor
}

// IsSlimeChunk : Random(ChunkSeed).nextInt(10) == 0
func IsSlimeChunk(world int64, x, z int32) bool {
	return core.NewRandom(ChunkSeed(world, x, z)).NextInt(10) == 0
}

// Grid 回傳以 (x0,z0) 為左上、w*h 區塊的 slime 判定（列優先，z 為列）。
func Grid(world int64, x0, z0 int32, w, h int) []bool {
	out := make([]bool, 0, max(w*h, 0))
	for dz := 0; dz < h; dz++ {
		for dx := 0; dx < w; dx++ {
			out = append(out, IsSlimeChunk(world, x0+int32(dx), z0+int32(dz)))
		}
	}
	return out
}

// Probe 預先算好 (x, z) 的座標項，搜尋時每個候選只需一次加法。
type Probe struct {
	Chunk
	off int64
}

func NewProbe(c Chunk) Probe {
	return Probe{Chunk: c, off: offset(c.X, c.Z)}
}

// Is 等同 IsSlimeChunk(world, X, Z)。
func (p Probe) Is(world int64) bool {
	s := core.Scramble((world + p.off) ^ chunkXor)
	for {
		s = core.NextState(s)
		bits := int32(s >> 17)
		val := bits % 10
		if bits-val+9 >= 0 {
			return val == 0
		}
	}
}

// MaySlimeLow 只看 world 的低 18 bits：若前兩次 next(31) 都是奇數，
// 不可能是 slime chunk（除非連續兩次拒絕取樣，機率約 2^-56，忽略）。
// 回傳 false 代表「此低位元組合下一定不是 slime」。
func (p Probe) MaySlimeLow(low uint64) bool {
	s := core.Scramble((int64(low) + p.off) ^ chunkXor)
	s1 := core.NextState(s)
	if (s1>>17)&1 == 0 {
		return true
	}
	s2 := core.NextState(s1)
	return (s2>>17)&1 == 0
}

// LowMask 為低位元預篩所用的遮罩。
func LowMask() uint64 { return lowMask }

// LowBitsMaySlime 等同 NewProbe(Chunk{x, z}).MaySlimeLow(low18)。
func LowBitsMaySlime(low18 uint64, x, z int32) bool {
	return NewProbe(Chunk{X: x, Z: z}).MaySlimeLow(low18 & lowMask)
}
