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

package enum

import (
	"cmp"
	"slices"
	"testing"
)

type t3 = Triple[int, int, int]

func cmpT3(a, b t3) int {
	return cmp.Or(cmp.Compare(a.I, b.I), cmp.Compare(a.J, b.J), cmp.Compare(a.K, b.K))
}

func naive(a, b, c int, off [3]int) []t3 {
	var out []t3
	for i := 0; i < a; i++ {
		for j := 0; j < b; j++ {
			for k := 0; k < c; k++ {
				out = append(out, t3{i + off[0], j + off[1], k + off[2]})
			}
		}
	}
	return out
}

func collect(seq func(func(t3) bool)) []t3 {
	var out []t3
	for v := range seq {
		out = append(out, v)
	}
	return out
}

func checkLimits(t *testing.T, a, b, c int) {
	t.Helper()
	off := [3]int{a - 3, -b, 7}
	p := Ints([3]int{a, b, c}, off)
	all := collect(p.All())
	if len(all) != a*b*c || p.Len() != a*b*c {
		t.Fatalf("(%d,%d,%d): got %d elements", a, b, c, len(all))
	}

	var steps []t3
	for s := 0; s < p.Steps(); s++ {
		steps = append(steps, collect(p.Step(s))...)
	}
	for s := p.Steps(); s < max(a, b, c); s++ {
		steps = append(steps, collect(p.Step(s))...)
	}
	if !slices.Equal(steps, all) {
		t.Fatalf("(%d,%d,%d): step concatenation differs from All", a, b, c)
	}

	want := naive(a, b, c, off)
	sorted := slices.Clone(all)
	slices.SortFunc(sorted, cmpT3)
	if !slices.Equal(sorted, want) || !slices.Equal(all, want) {
		t.Fatalf("(%d,%d,%d): enumeration differs from nested loop", a, b, c)
	}
	if nested := collect(p.Nested()); !slices.Equal(nested, want) {
		t.Fatalf("(%d,%d,%d): Nested order differs", a, b, c)
	}
}

func TestEnumerationCompletenessSmall(t *testing.T) {
	for a := 0; a <= 7; a++ {
		for b := 0; b <= 7; b++ {
			for c := 0; c <= 7; c++ {
				checkLimits(t, a, b, c)
			}
		}
	}
}

func TestEnumerationCompletenessLarge(t *testing.T) {
	for _, l := range [][3]int{{20, 20, 20}, {20, 1, 13}, {1, 20, 2}, {3, 5, 20}, {20, 19, 18}} {
		checkLimits(t, l[0], l[1], l[2])
	}
}

func TestZeroLimitIsEmpty(t *testing.T) {
	p := Ints([3]int{5, 0, 5}, [3]int{})
	if p.Steps() != 0 || len(collect(p.All())) != 0 || len(collect(p.Step(0))) != 0 {
		t.Fatalf("zero limit must be empty")
	}
}

func TestNonIntegerAxis(t *testing.T) {
	letters := Axis[string]{Start: "a", Limit: 3, Succ: func(s string) string { return string(s[0] + 1) }}
	bits := Axis[uint64]{Start: 1, Limit: 2, Succ: func(v uint64) uint64 { return v << 1 }}
	flags := Axis[bool]{Start: false, Limit: 2, Succ: func(b bool) bool { return !b }}
	p := New(letters, bits, flags)
	n := 0
	seen := map[Triple[string, uint64, bool]]bool{}
	for v := range p.All() {
		seen[v] = true
		n++
	}
	if n != 12 || len(seen) != 12 {
		t.Fatalf("expected 12 distinct, got %d/%d", n, len(seen))
	}
	if !seen[Triple[string, uint64, bool]{"c", 2, true}] {
		t.Fatalf("missing last element")
	}
}

func TestEarlyStopAndFrom(t *testing.T) {
	p := Ints([3]int{4, 4, 4}, [3]int{})
	n := 0
	for range p.All() {
		n++
		if n == 5 {
			break
		}
	}
	if n != 5 {
		t.Fatalf("early stop failed")
	}
	all := collect(p.All())
	s0 := len(collect(p.Step(0))) + len(collect(p.Step(1)))
	if !slices.Equal(collect(p.From(2)), all[s0:]) {
		t.Fatalf("From(2) must resume after steps 0 and 1")
	}
}
