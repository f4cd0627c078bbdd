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

package slime

import (
	"testing"

	"github.com/zintix-labs/seedlab/sdk/core"
)

func TestProbeMatchesPredicate(t *testing.T) {
	chunks := []Chunk{{0, 0}, {1, 1}, {-5, 9}, {30000, -30000}, {-1 << 20, 1 << 20}}
	for _, c := range chunks {
		p := NewProbe(c)
		for w := int64(-500); w < 500; w++ {
			if p.Is(w) != IsSlimeChunk(w, c.X, c.Z) {
				t.Fatalf("probe mismatch at %v seed %d", c, w)
			}
		}
	}
}

func TestSlimeFrequency(t *testing.T) {
	n := 0
	g := Grid(1234, -50, -50, 100, 100)
	for _, v := range g {
		if v {
			n++
		}
	}
	// 約 10%
	if n < 800 || n > 1200 {
		t.Fatalf("unexpected slime count %d / 10000", n)
	}
}

func TestLowBitsNeverPruneTrueSlime(t *testing.T) {
	r := core.NewPCG32(5)
	for range 20000 {
		w := int64(r.Uint64())
		c := Chunk{X: int32(r.IntN(2000) - 1000), Z: int32(r.IntN(2000) - 1000)}
		p := NewProbe(c)
		if p.Is(w) && !p.MaySlimeLow(uint64(w)&LowMask()) {
			t.Fatalf("low filter pruned slime chunk %v for seed %d", c, w)
		}
	}
}

func TestLowBitsDependOnlyOnLowPart(t *testing.T) {
	p := NewProbe(Chunk{3, -4})
	for low := uint64(0); low < 4096; low++ {
		a := p.MaySlimeLow(low)
		b := p.MaySlimeLow(low | 0xABCDE<<LowBits)
		if a != b {
			t.Fatalf("high bits changed the low filter at %d", low)
		}
	}
}
