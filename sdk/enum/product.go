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

// Package enum 提供惰性的三軸笛卡兒積列舉。
//
// 走訪順序固定為巢狀計數（k 最快）。Step(s) 只走最外層軸 i 的第 s 個值，
// 依序串接 Step(0..Steps()-1) 恰好等於 All，且互不重疊，
// 因此可以依 i 軸切分給多個 worker，或用 From 從中斷處續跑。
//
// 元素型別不限於整數，只要提供 successor。
package enum

import "iter"

// Triple 為列舉輸出。
type Triple[A, B, C any] struct {
	I A
	J B
	K C
}

// Axis 描述一個軸：起點、長度與後繼函式。
type Axis[T any] struct {
	Start T
	Limit int
	Succ  func(T) T
}

// nth 回傳 Start 往後 n 步的值。
func (a Axis[T]) nth(n int) T {
	v := a.Start
	for range n {
		v = a.Succ(v)
	}
	return v
}

// Product3 為三軸的積空間。
type Product3[A, B, C any] struct {
	a Axis[A]
	b Axis[B]
	c Axis[C]
}

// New 建立 Product3；limit < 0 視為 0。
func New[A, B, C any](a Axis[A], b Axis[B], c Axis[C]) *Product3[A, B, C] {
	a.Limit = max(a.Limit, 0)
	b.Limit = max(b.Limit, 0)
	c.Limit = max(c.Limit, 0)
	return &Product3[A, B, C]{a: a, b: b, c: c}
}

func incInt(v int) int { return v + 1 }

// Ints 建立 [off_i, off_i+limit_i) 的整數積空間。
func Ints(limits [3]int, offsets [3]int) *Product3[int, int, int] {
	return New(
		Axis[int]{Start: offsets[0], Limit: limits[0], Succ: incInt},
		Axis[int]{Start: offsets[1], Limit: limits[1], Succ: incInt},
		Axis[int]{Start: offsets[2], Limit: limits[2], Succ: incInt},
	)
}

func (p *Product3[A, B, C]) empty() bool {
	return p.a.Limit == 0 || p.b.Limit == 0 || p.c.Limit == 0
}

// Len 回傳元素總數。
func (p *Product3[A, B, C]) Len() int {
	return p.a.Limit * p.b.Limit * p.c.Limit
}

// Steps 回傳 step 數量，也就是外層軸的長度；任一 limit 為 0 時為 0。
func (p *Product3[A, B, C]) Steps() int {
	if p.empty() {
		return 0
	}
	return p.a.Limit
}

// Nested 以一般巢狀順序列舉所有元素，與 All 相同。
func (p *Product3[A, B, C]) Nested() iter.Seq[Triple[A, B, C]] {
	return p.From(0)
}

// Step 列舉 i == s 的元素；s 超出範圍時為空。
func (p *Product3[A, B, C]) Step(s int) iter.Seq[Triple[A, B, C]] {
	return func(yield func(Triple[A, B, C]) bool) {
		if p.empty() || s < 0 || s >= p.Steps() {
			return
		}
		p.walk(p.a.nth(s), yield)
	}
}

// walk 固定 i 值，走完 j、k 兩軸；yield 回傳 false 時回傳 false。
func (p *Product3[A, B, C]) walk(vi A, yield func(Triple[A, B, C]) bool) bool {
	vj := p.b.Start
	for j := 0; j < p.b.Limit; j++ {
		vk := p.c.Start
		for k := 0; k < p.c.Limit; k++ {
			if !yield(Triple[A, B, C]{vi, vj, vk}) {
				return false
			}
			vk = p.c.Succ(vk)
		}
		vj = p.b.Succ(vj)
	}
	return true
}

// All 依巢狀順序列舉所有元素。
func (p *Product3[A, B, C]) All() iter.Seq[Triple[A, B, C]] {
	return p.From(0)
}

// From 從第 step 層開始列舉到最後，供中斷後續跑。
func (p *Product3[A, B, C]) From(step int) iter.Seq[Triple[A, B, C]] {
	return func(yield func(Triple[A, B, C]) bool) {
		if p.empty() {
			return
		}
		step = max(step, 0)
		if step >= p.Steps() {
			return
		}
		vi := p.a.nth(step)
		for i := step; i < p.a.Limit; i++ {
			if !p.walk(vi, yield) {
				return
			}
			vi = p.a.Succ(vi)
		}
	}
}
