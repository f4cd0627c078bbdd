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

package spawner

import (
	"math"
	"reflect"
	"slices"
	"strconv"
	"testing"

	"github.com/zintix-labs/seedlab/sdk/core"
)

// pointsAround 產生 n 個與 ref 平方距離 <= Radius^2 的點。
func pointsAround(c *core.Core, ref Pos, n int) []Spawner {
	out := make([]Spawner, 0, n)
	for len(out) < n {
		dx := c.Between(-Radius, Radius)
		dy := c.Between(-Radius, Radius)
		dz := c.Between(-Radius, Radius)
		if dx*dx+dy*dy+dz*dz > Radius*Radius {
			continue
		}
		p := Pos{X: int32(int64(ref.X) + dx), Y: int32(int64(ref.Y) + dy), Z: int32(int64(ref.Z) + dz)}
		out = append(out, Spawner{Pos: p, Label: "zombie"})
	}
	return out
}

func TestSingleClusterAroundReference(t *testing.T) {
	c := core.New(core.Default().New(16))
	refs := []Pos{
		{0, 64, 0},
		{-123456, 20, 987654},
		{math.MaxInt32 - Radius, math.MaxInt32 - Radius, math.MaxInt32 - Radius},
		{math.MinInt32 + Radius, 0, math.MinInt32 + Radius},
	}
	for _, ref := range refs {
		for n := 0; n <= 100; n += 7 {
			in := pointsAround(c, ref, n)
			got := FindMultiSpawners(in)
			if n <= 1 {
				if len(got) != 0 {
					t.Fatalf("n=%d: expected no groups, got %d", n, len(got))
				}
				continue
			}
			if len(got) != 1 || len(got[0].Members) != n {
				t.Fatalf("ref %v n=%d: got %d groups", ref, n, len(got))
			}
		}
	}
}

func TestSeparateClusters(t *testing.T) {
	in := []Spawner{
		{Pos{0, 30, 0}, "a"},
		{Pos{10, 30, 10}, "b"},
		{Pos{1000, 30, 1000}, "c"},
		{Pos{1005, 31, 1000}, "d"},
		{Pos{5000, 30, 5000}, "lonely"},
	}
	got := FindMultiSpawners(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if got[0].Members[0].Label != "a" || got[1].Members[0].Label != "c" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Center != (Pos{5, 30, 5}) {
		t.Fatalf("center %v", got[0].Center)
	}
}

func TestDuplicatesAndEmpty(t *testing.T) {
	if FindMultiSpawners(nil) != nil {
		t.Fatalf("nil input")
	}
	p := Spawner{Pos{7, 7, 7}, "x"}
	got := FindMultiSpawners([]Spawner{p, p, p})
	if len(got) != 1 || len(got[0].Members) != 3 {
		t.Fatalf("duplicates should cluster: %+v", got)
	}
}

func TestStrictSplitsChains(t *testing.T) {
	// 相鄰點距離 30，首尾距離 60：連通但不存在共同參考點
	in := []Spawner{
		{Pos{0, 0, 0}, "a"},
		{Pos{30, 0, 0}, "b"},
		{Pos{60, 0, 0}, "c"},
	}
	if n := len(FindMultiSpawners(in)); n != 1 {
		t.Fatalf("loose grouping should chain, got %d", n)
	}
	strict := FindMultiSpawnersStrict(in)
	if len(strict) != 1 || len(strict[0].Members) != 2 {
		t.Fatalf("strict should keep one pair, got %+v", strict)
	}
	for _, m := range strict[0].Members {
		if SqDist(m.Pos, strict[0].Center) > Radius*Radius {
			t.Fatalf("center %v too far from %v", strict[0].Center, m.Pos)
		}
	}
}

func TestStrictIgnoresInputOrder(t *testing.T) {
	chain := []Spawner{
		{Pos{0, 0, 0}, "a"},
		{Pos{30, 0, 0}, "b"},
		{Pos{60, 0, 0}, "c"},
	}
	perms := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for _, p := range perms {
		got := FindMultiSpawnersStrict([]Spawner{chain[p[0]], chain[p[1]], chain[p[2]]})
		if len(got) != 1 || got[0].Members[0].Label != "a" || got[0].Members[1].Label != "b" {
			t.Fatalf("order %v: got %+v", p, got)
		}
	}

	// 兩團相距 40 的點：連成一個分量但無法全部共用參考點
	c := core.New(core.Default().New(23))
	in := append(pointsAround(c, Pos{0, 0, 0}, 12), pointsAround(c, Pos{40, 0, 0}, 12)...)
	in = append(in, Spawner{Pos: Pos{-16, 0, 0}}, Spawner{Pos: Pos{56, 0, 0}})
	for i := range in {
		in[i].Label = strconv.Itoa(i)
	}
	want := FindMultiSpawnersStrict(in)
	if len(want) < 2 {
		t.Fatalf("expected the component to split, got %d groups", len(want))
	}
	idx := make([]int, len(in))
	for i := range idx {
		idx[i] = i
	}
	for range 5 {
		c.ShuffleInts(idx)
		shuffled := make([]Spawner, len(in))
		for i, j := range idx {
			shuffled[i] = in[j]
		}
		if got := FindMultiSpawnersStrict(shuffled); !reflect.DeepEqual(got, want) {
			t.Fatalf("groups depend on input order:\n got %+v\nwant %+v", got, want)
		}
	}
}

func TestStrictGroupsAreMaximal(t *testing.T) {
	c := core.New(core.Default().New(31))
	var in []Spawner
	for _, ref := range []Pos{{0, 0, 0}, {25, 0, 0}, {50, 10, 0}, {25, 0, 30}, {500, 0, 0}} {
		in = append(in, pointsAround(c, ref, 6)...)
	}
	for i := range in {
		in[i].Label = strconv.Itoa(i)
	}
	assigned := map[string]bool{}
	for _, g := range FindMultiSpawnersStrict(in) {
		if _, ok := CommonPoint(positions(g.Members)); !ok {
			t.Fatalf("group without common point: %+v", g)
		}
		mine := map[string]bool{}
		for _, m := range g.Members {
			mine[m.Label] = true
		}
		// 尚未分配的成員都無法再加入
		for _, s := range in {
			if mine[s.Label] || assigned[s.Label] {
				continue
			}
			if _, ok := CommonPoint(positions(append(slices.Clone(g.Members), s))); ok {
				t.Fatalf("spawner %s could join group starting at %s", s.Label, g.Members[0].Label)
			}
		}
		for l := range mine {
			assigned[l] = true
		}
	}
}

func FuzzFindMultiSpawners(f *testing.F) {
	f.Add(int32(0), int32(0), int32(0), int32(1), int32(1), int32(1), int32(math.MinInt32), int32(math.MaxInt32), int32(0))
	f.Add(int32(math.MaxInt32), int32(math.MaxInt32), int32(math.MaxInt32), int32(math.MinInt32), int32(math.MinInt32), int32(math.MinInt32), int32(5), int32(5), int32(5))
	f.Fuzz(func(t *testing.T, x1, y1, z1, x2, y2, z2, x3, y3, z3 int32) {
		in := []Spawner{{Pos{x1, y1, z1}, "1"}, {Pos{x2, y2, z2}, "2"}, {Pos{x3, y3, z3}, "3"}}
		for _, g := range FindMultiSpawners(in) {
			if len(g.Members) < 2 {
				t.Fatalf("group smaller than 2")
			}
		}
	})
}
