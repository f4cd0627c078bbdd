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

// Package geom 處理 3D 旋轉/鏡射（48 種帶號置換矩陣）與其索引互轉。
package geom

import "github.com/zintix-labs/seedlab/errs"

// NumRotations 為 3D 座標軸旋轉+鏡射的總數（3! * 2^3）。
const NumRotations = 48

// Mat 為 3x3 整數矩陣，元素只會是 -1、0、1。
type Mat [3][3]int

// Vec 為 3D 整數向量。
type Vec [3]int64

// 六種軸置換，字典序
var perms = [6][3]int{
	{0, 1, 2},
	{0, 2, 1},
	{1, 0, 2},
	{1, 2, 0},
	{2, 0, 1},
	{2, 1, 0},
}

// Idx2Mat : idx = permIndex*8 + signBits；第 r 列在 perm[r] 欄放 ±1，bit r 為 1 時取負。
// idx 超出範圍時回傳單位矩陣與 false。
func Idx2Mat(idx int) (Mat, bool) {
	var m Mat
	if idx < 0 || idx >= NumRotations {
		return Mat{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, false
	}
	p := perms[idx/8]
	signs := idx % 8
	for r := 0; r < 3; r++ {
		v := 1
		if signs&(1<<r) != 0 {
			v = -1
		}
		m[r][p[r]] = v
	}
	return m, true
}

// Mat2Idx 為 Idx2Mat 的反函式；非帶號置換矩陣回傳錯誤。
func Mat2Idx(m Mat) (int, error) {
	var p [3]int
	signs := 0
	used := [3]bool{}
	for r := 0; r < 3; r++ {
		col := -1
		for c := 0; c < 3; c++ {
			switch m[r][c] {
			case 0:
			case 1, -1:
				if col >= 0 {
					return -1, errs.Malformedf("row %d has more than one non-zero entry", r)
				}
				col = c
			default:
				return -1, errs.Malformedf("entry (%d,%d)=%d is not in {-1,0,1}", r, c, m[r][c])
			}
		}
		if col < 0 {
			return -1, errs.Malformedf("row %d is zero", r)
		}
		if used[col] {
			return -1, errs.Malformedf("column %d used twice", col)
		}
		used[col] = true
		p[r] = col
		if m[r][col] < 0 {
			signs |= 1 << r
		}
	}
	for i, q := range perms {
		if q == p {
			return i*8 + signs, nil
		}
	}
	return -1, errs.Internalf("permutation %v not found", p)
}

// Det 回傳行列式。
func (m Mat) Det() int {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Mul 回傳 m*o。
func (m Mat) Mul(o Mat) Mat {
	var r Mat
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return r
}

// Transpose 對正交矩陣即為反矩陣。
func (m Mat) Transpose() Mat {
	var r Mat
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// Rotate 回傳 m*v。
func Rotate(m Mat, v Vec) Vec {
	var r Vec
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i] += int64(m[i][j]) * v[j]
		}
	}
	return r
}

// Canonical 回傳 48 種變換下字典序最小的向量與其索引，用於比對不同朝向的同一圖樣。
func Canonical(v Vec) (Vec, int) {
	best, bi := v, 0
	for i := 0; i < NumRotations; i++ {
		m, _ := Idx2Mat(i)
		r := Rotate(m, v)
		if less(r, best) {
			best, bi = r, i
		}
	}
	return best, bi
}

func less(a, b Vec) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
