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
	"math/big"
	"math/bits"
	"slices"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/core"
)

// MaxPartial 逐位元求解時允許的部分解數量上限，超過視為退化輸入。
const MaxPartial = 1 << 20

// Triple 為一筆觀測：在 (X, Z) 處得到的衍生 seed。
type Triple struct {
	Seed int64 `json:"seed" yaml:"seed"`
	X    int64 `json:"x" yaml:"x"`
	Z    int64 `json:"z" yaml:"z"`
}

// ChunkPopulationSeedToWorldSeed 由至少三筆 (population seed, chunkX, chunkZ) 反推 48-bit world seed。
// 非退化輸入預期恰好回傳一個 seed。
func ChunkPopulationSeedToWorldSeed(ts []Triple) ([]int64, error) {
	return SolveWorldSeed(ts, RoundHalf)
}

// FeatureSeedToWorldSeed 同上，feature seed（|1 rounding，方塊座標）。
func FeatureSeedToWorldSeed(ts []Triple) ([]int64, error) {
	return SolveWorldSeed(ts, RoundOr1)
}

// CheckTriples 檢查座標：至少三筆、不可重複、前三筆（或任三筆）不可全部共線。
func CheckTriples(ts []Triple) error {
	if len(ts) < 3 {
		return errs.Malformedf("need at least 3 observations, got %d", len(ts))
	}
	seen := make(map[[2]int64]struct{}, len(ts))
	for _, t := range ts {
		k := [2]int64{t.X, t.Z}
		if _, dup := seen[k]; dup {
			return errs.Malformedf("duplicate coordinate (%d,%d)", t.X, t.Z)
		}
		seen[k] = struct{}{}
	}
	for i := 2; i < len(ts); i++ {
		for j := 1; j < i; j++ {
			if !collinear(ts[0], ts[j], ts[i]) {
				return nil
			}
		}
	}
	return errs.Malformedf("all %d coordinates are collinear", len(ts))
}

// collinear 以 big.Int 計算外積，座標可為完整 int64 範圍。
func collinear(a, b, c Triple) bool {
	dx1 := new(big.Int).Sub(big.NewInt(b.X), big.NewInt(a.X))
	dz1 := new(big.Int).Sub(big.NewInt(b.Z), big.NewInt(a.Z))
	dx2 := new(big.Int).Sub(big.NewInt(c.X), big.NewInt(a.X))
	dz2 := new(big.Int).Sub(big.NewInt(c.Z), big.NewInt(a.Z))
	l := new(big.Int).Mul(dx1, dz2)
	r := new(big.Int).Mul(dx2, dz1)
	return l.Cmp(r) == 0
}

// SolveWorldSeed 求解 x_i*m + z_i*n == seed_i ^ w (mod 2^48)。
//
// 只對 w 逐位元（由低到高）擴展；m、n 不列舉。對固定的 w mod 2^(b+1)，
// 右式已知，座標矩陣經列運算化簡後可直接判斷 (m, n) 是否有解，
// 因此座標共有的 2 的冪次只會放寬條件，不會讓部分解倍增。
// 最後以 Random(w) 正向推出 (m, n) 驗證。
func SolveWorldSeed(ts []Triple, r Rounding) ([]int64, error) {
	if err := CheckTriples(ts); err != nil {
		return nil, err
	}
	sys := reduce(ts)
	cur := []uint64{0}
	for b := uint(0); b < 48; b++ {
		next := make([]uint64, 0, len(cur)*2)
		for _, w := range cur {
			for _, q := range [2]uint64{w, w | 1<<b} {
				if sys.solvable(q, b+1) {
					next = append(next, q)
				}
			}
		}
		if len(next) > MaxPartial {
			return nil, errs.Malformedf("degenerate coordinates: %d partial solutions at bit %d", len(next), b)
		}
		cur = next
	}

	out := []int64{}
	for _, w := range cur {
		if matchesAll(int64(w), ts, r) {
			out = append(out, int64(w))
		}
	}
	slices.Sort(out)
	return out, nil
}

// system 為座標矩陣 L（k x 2）化簡後的形式 T*L：
//
//	列 0 : 2^need[0] * 奇數 * m'
//	列 1 : 2^need[1] * 奇數 * n'
//	其餘 : 0
//
// (m', n') 為 (m, n) 的可逆換元。L*(m,n) == r 有解 iff 每列 (T*r)_i
// 可被 2^need[i] 整除（其餘列 need 為 48）。
type system struct {
	rhs  []int64 // 觀測到的 seed
	t    [][]uint64
	need []uint
}

func reduce(ts []Triple) *system {
	k := len(ts)
	l := make([][2]uint64, k)
	t := make([][]uint64, k)
	for i, tr := range ts {
		l[i] = [2]uint64{uint64(tr.X) & core.Mask48, uint64(tr.Z) & core.Mask48}
		t[i] = make([]uint64, k)
		t[i][i] = 1
	}
	need := make([]uint, k)
	for i := range need {
		need[i] = 48
	}
	for col := 0; col < 2 && col < k; col++ {
		// 取剩餘子矩陣中 2-adic valuation 最小者為 pivot
		pi, pj, best := col, col, uint(49)
		for i := col; i < k; i++ {
			for j := col; j < 2; j++ {
				if v := val48(l[i][j]); v < best {
					pi, pj, best = i, j, v
				}
			}
		}
		if pj != col {
			for i := range l {
				l[i][0], l[i][1] = l[i][1], l[i][0]
			}
		}
		l[col], l[pi] = l[pi], l[col]
		t[col], t[pi] = t[pi], t[col]
		need[col] = best
		if best >= 48 {
			continue
		}
		inv := inverse64(l[col][col] >> best)
		for i := col + 1; i < k; i++ {
			if l[i][col]&core.Mask48 == 0 {
				continue
			}
			q := (l[i][col] & core.Mask48 >> best) * inv
			for j := range 2 {
				l[i][j] = (l[i][j] - q*l[col][j]) & core.Mask48
			}
			for j := range k {
				t[i][j] -= q * t[col][j]
			}
		}
	}
	rhs := make([]int64, k)
	for i, tr := range ts {
		rhs[i] = tr.Seed
	}
	return &system{rhs: rhs, t: t, need: need}
}

// solvable 檢查 w 的低 bits 位元是否仍可能延伸成解。
func (s *system) solvable(w uint64, bits uint) bool {
	for row, coef := range s.t {
		n := min(s.need[row], bits)
		if n == 0 {
			continue
		}
		var acc uint64
		for i, c := range coef {
			acc += c * (uint64(s.rhs[i]) ^ w)
		}
		if acc&(1<<n-1) != 0 {
			return false
		}
	}
	return true
}

// val48 : x mod 2^48 的 2-adic valuation，0 時為 48。
func val48(x uint64) uint {
	x &= core.Mask48
	if x == 0 {
		return 48
	}
	return uint(bits.TrailingZeros64(x))
}

// inverse64 : 奇數 x 在 mod 2^64 下的乘法反元素（Newton 迭代）。
func inverse64(x uint64) uint64 {
	y := x
	for range 5 {
		y *= 2 - x*y
	}
	return y
}

func matchesAll(w int64, ts []Triple, r Rounding) bool {
	m, n := r.Multipliers(w)
	for _, t := range ts {
		got := (t.X*m + t.Z*n) ^ w
		if Mask48(got) != Mask48(t.Seed) {
			return false
		}
	}
	return true
}
