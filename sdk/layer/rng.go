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

package layer

// layer RNG 的 64-bit LCG 常數（乘法以 int64 溢位）
const (
	lcgMul int64 = 6364136223846793005
	lcgAdd int64 = 1442695040888963407
)

func mix(s int64) int64 {
	return s * (s*lcgMul + lcgAdd)
}

// MixBaseSeed 由 stage 的 base seed 推出混合後的 base seed。
func MixBaseSeed(base int64) int64 {
	s := base
	for range 3 {
		s = mix(s) + base
	}
	return s
}

// WorldGenSeed 由 world seed 與混合後 base seed 推出 stage 的 world-gen seed。
func WorldGenSeed(world, mixedBase int64) int64 {
	s := world
	for range 3 {
		s = mix(s) + mixedBase
	}
	return s
}

// rng 為單一 stage 的格子亂數；每格先 setChunk 再取數。
type rng struct {
	ws int64
	cs int64
}

func newRNG(world, mixedBase int64) *rng {
	return &rng{ws: WorldGenSeed(world, mixedBase)}
}

func (r *rng) setChunk(x, z int64) {
	cs := r.ws
	cs = mix(cs) + x
	cs = mix(cs) + z
	cs = mix(cs) + x
	cs = mix(cs) + z
	r.cs = cs
}

func (r *rng) nextInt(n int32) int32 {
	i := int32((r.cs >> 24) % int64(n))
	if i < 0 {
		i += n
	}
	r.cs = mix(r.cs) + r.ws
	return i
}

func (r *rng) choose2(a, b int32) int32 {
	if r.nextInt(2) == 0 {
		return a
	}
	return b
}

func (r *rng) choose4(a, b, c, d int32) int32 {
	switch r.nextInt(4) {
	case 0:
		return a
	case 1:
		return b
	case 2:
		return c
	default:
		return d
	}
}

// modeOrRandom : 四格中出現最多者；無法決定時隨機取一。
func (r *rng) modeOrRandom(a, b, c, d int32) int32 {
	switch {
	case b == c && c == d:
		return b
	case a == b && a == c:
		return a
	case a == b && a == d:
		return a
	case a == c && a == d:
		return a
	case a == b && c != d:
		return a
	case a == c && b != d:
		return a
	case a == d && b != c:
		return a
	case b == c && a != d:
		return b
	case b == d && a != c:
		return b
	case c == d && a != b:
		return c
	}
	return r.choose4(a, b, c, d)
}
