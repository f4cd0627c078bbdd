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

// Package spawner 找出可同時啟動的多個 spawner（dungeon）群組。
package spawner

import (
	"cmp"
	"slices"
)

// Radius 為 spawner 的啟動半徑（方塊）。
const Radius = 16

// pairLimit : 兩個 spawner 要共享一個半徑內的點，距離不能超過 2*Radius。
const pairLimit = int64(2*Radius) * int64(2*Radius)

// Pos 為方塊座標。
type Pos struct {
	X int32 `json:"x" yaml:"x"`
	Y int32 `json:"y" yaml:"y"`
	Z int32 `json:"z" yaml:"z"`
}

// Spawner 為一個帶標籤的位置（例如 mob 種類或來源檔）。
type Spawner struct {
	Pos   Pos    `json:"pos" yaml:"pos"`
	Label string `json:"label" yaml:"label"`
}

// Group 為一個群組；Center 為成員座標平均（向零取整），Strict 模式下則是共同參考點。
type Group struct {
	Members []Spawner `json:"members" yaml:"members"`
	Center  Pos       `json:"center" yaml:"center"`
}

// SqDist 以 int64 計算平方距離，完整 int32 範圍不會溢位。
func SqDist(a, b Pos) int64 {
	dx := int64(a.X) - int64(b.X)
	dy := int64(a.Y) - int64(b.Y)
	dz := int64(a.Z) - int64(b.Z)
	return dx*dx + dy*dy + dz*dz
}

func near(a, b Pos, limit int64, span int64) bool {
	// 任一軸距離過大直接排除
	if abs64(int64(a.X)-int64(b.X)) > span || abs64(int64(a.Y)-int64(b.Y)) > span || abs64(int64(a.Z)-int64(b.Z)) > span {
		return false
	}
	return SqDist(a, b) <= limit
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// unionFind 使用路徑壓縮 + union by size。
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
		u.size[i] = 1
	}
	return u
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
}

// FindMultiSpawners 以兩兩距離 <= 2*Radius 建圖，回傳大小 >= 2 的連通分量。
// 輸出依第一個成員的輸入順序排序，成員維持輸入順序。空輸入回傳 nil。
func FindMultiSpawners(in []Spawner) []Group {
	if len(in) < 2 {
		return nil
	}
	// 依 X 排序後只比較 X 視窗內的點，避免大量遠點時的平方成本
	order := make([]int, len(in))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return cmp.Compare(in[a].Pos.X, in[b].Pos.X) })

	span := int64(2 * Radius)
	uf := newUnionFind(len(in))
	for oi, a := range order {
		for _, b := range order[oi+1:] {
			if int64(in[b].Pos.X)-int64(in[a].Pos.X) > span {
				break
			}
			if near(in[a].Pos, in[b].Pos, pairLimit, span) {
				uf.union(a, b)
			}
		}
	}

	byRoot := map[int][]int{}
	var roots []int
	for i := range in {
		r := uf.find(i)
		if _, ok := byRoot[r]; !ok {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], i)
	}
	var out []Group
	for _, r := range roots {
		idx := byRoot[r]
		if len(idx) < 2 {
			continue
		}
		out = append(out, makeGroup(in, idx))
	}
	return out
}

func makeGroup(in []Spawner, idx []int) Group {
	g := Group{Members: make([]Spawner, 0, len(idx))}
	var sx, sy, sz int64
	for _, i := range idx {
		g.Members = append(g.Members, in[i])
		sx += int64(in[i].Pos.X)
		sy += int64(in[i].Pos.Y)
		sz += int64(in[i].Pos.Z)
	}
	n := int64(len(idx))
	g.Center = Pos{X: int32(sx / n), Y: int32(sy / n), Z: int32(sz / n)}
	return g
}

// CommonPoint 尋找一個整數點，使其與所有位置的平方距離都 <= Radius^2。
func CommonPoint(ps []Pos) (Pos, bool) {
	if len(ps) == 0 {
		return Pos{}, false
	}
	r := int64(Radius)
	lo := [3]int64{int64(ps[0].X) - r, int64(ps[0].Y) - r, int64(ps[0].Z) - r}
	hi := [3]int64{int64(ps[0].X) + r, int64(ps[0].Y) + r, int64(ps[0].Z) + r}
	for _, p := range ps[1:] {
		c := [3]int64{int64(p.X), int64(p.Y), int64(p.Z)}
		for i := 0; i < 3; i++ {
			lo[i] = max(lo[i], c[i]-r)
			hi[i] = min(hi[i], c[i]+r)
		}
	}
	for i := 0; i < 3; i++ {
		// 參考點必須落在 int32 範圍
		lo[i] = max(lo[i], -1<<31)
		hi[i] = min(hi[i], 1<<31-1)
		if lo[i] > hi[i] {
			return Pos{}, false
		}
	}
	limit := r * r
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				q := Pos{X: int32(x), Y: int32(y), Z: int32(z)}
				ok := true
				for _, p := range ps {
					if SqDist(p, q) > limit {
						ok = false
						break
					}
				}
				if ok {
					return q, true
				}
			}
		}
	}
	return Pos{}, false
}

// FindMultiSpawnersStrict 在 FindMultiSpawners 的分量上再要求存在共同參考點。
// 分量內的成員依 compareSpawner 排序後逐次取出子群組：由剩餘成員中最小者開始，依序加入所有仍能
// 共用參考點的成員。每個子群組在尚未分配的成員中為極大，結果與輸入順序無關。
// 大小 < 2 的子群組捨棄；輸出依第一個成員排序，Center 為共同參考點。
func FindMultiSpawnersStrict(in []Spawner) []Group {
	var out []Group
	for _, g := range FindMultiSpawners(in) {
		rest := slices.Clone(g.Members)
		slices.SortFunc(rest, compareSpawner)
		for len(rest) > 0 {
			sub := []Spawner{rest[0]}
			var left []Spawner
			for _, s := range rest[1:] {
				next := append(slices.Clip(sub), s)
				if _, ok := CommonPoint(positions(next)); ok {
					sub = next
				} else {
					left = append(left, s)
				}
			}
			if len(sub) >= 2 {
				c, _ := CommonPoint(positions(sub))
				out = append(out, Group{Members: sub, Center: c})
			}
			rest = left
		}
	}
	slices.SortFunc(out, func(a, b Group) int { return compareSpawner(a.Members[0], b.Members[0]) })
	return out
}

func compareSpawner(a, b Spawner) int {
	return cmp.Or(
		cmp.Compare(a.Pos.X, b.Pos.X),
		cmp.Compare(a.Pos.Y, b.Pos.Y),
		cmp.Compare(a.Pos.Z, b.Pos.Z),
		cmp.Compare(a.Label, b.Label),
	)
}

func positions(ss []Spawner) []Pos {
	out := make([]Pos, len(ss))
	for i, s := range ss {
		out[i] = s.Pos
	}
	return out
}
