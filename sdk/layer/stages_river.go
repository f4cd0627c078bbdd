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

// riverInit 在陸地上放置 [2, 300000] 的噪聲值，海洋為 0。
func riverInit(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		if p.rel(i, j) > 0 {
			return r.nextInt(299999) + 2
		}
		return 0
	})
	return out
}

func riverFilter(v int32) int32 {
	if v >= 2 {
		return 2 + v&1
	}
	return v
}

// river 在噪聲奇偶改變處畫出河道；其餘格為 -1。
func river(_ *rng, ps []Map, a Area) Map {
	p := &ps[0]
	out := NewMap(a)
	for j := 0; j < a.H; j++ {
		for i := 0; i < a.W; i++ {
			c, n, e, w, s := cross(p, i, j)
			c = riverFilter(c)
			v := River
			if c == riverFilter(w) && c == riverFilter(n) && c == riverFilter(e) && c == riverFilter(s) {
				v = -1
			}
			out.Data[j*a.W+i] = v
		}
	}
	return out
}

// riverMix 合併 biome 與河道；海洋不放河。
func riverMix(_ *rng, ps []Map, a Area) Map {
	b, rv := &ps[0], &ps[1]
	out := NewMap(a)
	for k := range out.Data {
		bv, rvv := b.Data[k], rv.Data[k]
		switch {
		case bv == Ocean || bv == DeepOcean:
			out.Data[k] = bv
		case rvv != River:
			out.Data[k] = bv
		case bv == IcePlains:
			out.Data[k] = FrozenRiver
		case bv == MushroomIsland || bv == MushroomShore:
			out.Data[k] = MushroomShore
		default:
			out.Data[k] = rvv & 255
		}
	}
	return out
}
