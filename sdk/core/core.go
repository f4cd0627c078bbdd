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

// Package core 提供兩類亂數來源：
//   - Random：位元級重現遊戲世界生成所用的 48-bit LCG（含 skip / 反推上一步）。
//   - PCG32：一般取樣用，供合成證據（generate）挑選座標。
package core

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

type PRNGFactory interface {
	// New 以指定 seed 建立新的 PRNG。
	//
	// 合約：相同 seed 必須產生相同的輸出序列，合成證據才可重現。
	New(int64) PRNG
}

// DefaultPRNG 實作預設的 PRNGFactory (PCG32)
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return NewPCG32(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// JavaPRNG 以 Random 作為 PRNG 來源（同一個 seed 與遊戲內 java.util.Random 序列一致）。
type JavaPRNG struct{}

func (JavaPRNG) New(seed int64) PRNG {
	return NewRandom(seed)
}

// Core 封裝 PRNG，並提供常用取樣與工具方法。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	return src[c.IntN(len(src))]
}

// Between 回傳 [lo,hi] 的整數；hi < lo 時回傳 lo。
func (c *Core) Between(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + int64(c.Uint64()%uint64(hi-lo+1))
}

// ShuffleInts 以 Fisher-Yates 就地重排。
func (c *Core) ShuffleInts(src []int) {
	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}

// Sample 從 [0,n) 中不重複取 k 個索引（k >= n 時回傳全部，順序隨機）。
func (c *Core) Sample(n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if k > n {
		k = n
	}
	// 只需洗前 k 個
	for i := 0; i < k; i++ {
		j := i + c.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
