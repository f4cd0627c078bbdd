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

package core

// 48-bit LCG 常數（java.util.Random）
const (
	Multiplier uint64 = 0x5DEECE66D
	Increment  uint64 = 0xB
	Mask48     uint64 = (1 << 48) - 1
)

// multInverse 為 Multiplier 在 mod 2^48 下的乘法反元素。
var multInverse = inverseOdd(Multiplier) & Mask48

// inverseOdd 以 Newton 迭代求奇數 a 在 mod 2^64 下的反元素（每輪精度加倍，6 輪 >= 64 bits）。
func inverseOdd(a uint64) uint64 {
	x := a
	for range 6 {
		x *= 2 - a*x
	}
	return x
}

// MultInverse 回傳 Multiplier 的 mod 2^48 反元素。
func MultInverse() uint64 { return multInverse }

// Scramble 將 seed 轉成初始 state：(seed ^ Multiplier) & Mask48。
func Scramble(seed int64) uint64 {
	return (uint64(seed) ^ Multiplier) & Mask48
}

// NextState 前進一步。
func NextState(s uint64) uint64 {
	return (s*Multiplier + Increment) & Mask48
}

// PrevState 反推上一步；對所有 48-bit state 滿足 PrevState(NextState(s)) == s。
func PrevState(s uint64) uint64 {
	return ((s - Increment) * multInverse) & Mask48
}

// Affine 表示 state -> A*state + C (mod 2^48)。
type Affine struct {
	A uint64
	C uint64
}

// Step 是單步轉換。
var Step = Affine{A: Multiplier, C: Increment}

// Apply 對 state 套用轉換。
func (f Affine) Apply(s uint64) uint64 {
	return (f.A*s + f.C) & Mask48
}

// Then 回傳「先 f 再 g」的合成轉換。
func (f Affine) Then(g Affine) Affine {
	return Affine{
		A: (g.A * f.A) & Mask48,
		C: (g.A*f.C + g.C) & Mask48,
	}
}

// Pow 回傳 f 連續套用 n 次的轉換（平方倍增，O(log n)）。
// n < 0 時使用反轉換。
func (f Affine) Pow(n int64) Affine {
	if n < 0 {
		return f.Inverse().Pow(-n)
	}
	acc := Affine{A: 1, C: 0}
	base := f
	for n > 0 {
		if n&1 == 1 {
			acc = acc.Then(base)
		}
		base = base.Then(base)
		n >>= 1
	}
	return acc
}

// Inverse 回傳反轉換；A 必須為奇數。
func (f Affine) Inverse() Affine {
	inv := inverseOdd(f.A) & Mask48
	return Affine{A: inv, C: (-(inv * f.C)) & Mask48}
}

// SkipState 前進 n 步。
func SkipState(s uint64, n int64) uint64 {
	return Step.Pow(n).Apply(s)
}
