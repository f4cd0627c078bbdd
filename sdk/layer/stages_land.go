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

// stage 由上游 Map 計算 area 上的新 Map。
// 有鄰格需求的 stage，上游 area 為 a.Pad(1)，中心格位於相對座標 (i+1, j+1)。
type stage func(r *rng, ps []Map, a Area) Map

// cross 回傳中心與北、東、西、南。
func cross(p *Map, i, j int) (c, n, e, w, s int32) {
	return p.rel(i+1, j+1), p.rel(i+1, j), p.rel(i+2, j+1), p.rel(i, j+1), p.rel(i+1, j+2)
}

// diag 回傳中心與西北、東北、西南、東南。
func diag(p *Map, i, j int) (c, nw, ne, sw, se int32) {
	return p.rel(i+1, j+1), p.rel(i, j), p.rel(i+2, j), p.rel(i, j+2), p.rel(i+2, j+2)
}

// forEach 走訪輸出格並先設定該格亂數。
func forEach(r *rng, out *Map, fn func(i, j int) int32) {
	for j := 0; j < out.H; j++ {
		for i := 0; i < out.W; i++ {
			r.setChunk(int64(out.X+i), int64(out.Z+j))
			out.Data[j*out.W+i] = fn(i, j)
		}
	}
}

func island(r *rng, _ []Map, a Area) Map {
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		if r.nextInt(10) == 0 {
			return 1
		}
		return 0
	})
	// 原點固定為陸地
	out.Set(0, 0, 1)
	return out
}

// zoomArea 回傳 2 倍放大所需的上游範圍（多一格供右/下鄰格使用）。
func zoomArea(a Area) Area {
	px, pz := a.X>>1, a.Z>>1
	return Area{
		X: px,
		Z: pz,
		W: ((a.X+a.W-1)>>1) - px + 2,
		H: ((a.Z+a.H-1)>>1) - pz + 2,
	}
}

func zoomWith(r *rng, p *Map, a Area, fuzzy bool) Map {
	bw := (p.W - 1) << 1
	bh := (p.H - 1) << 1
	buf := make([]int32, bw*bh)
	for j := 0; j < p.H-1; j++ {
		for i := 0; i < p.W-1; i++ {
			r.setChunk(int64((p.X+i)<<1), int64((p.Z+j)<<1))
			v00 := p.rel(i, j)
			v10 := p.rel(i+1, j)
			v01 := p.rel(i, j+1)
			v11 := p.rel(i+1, j+1)
			o := (j<<1)*bw + (i << 1)
			buf[o] = v00
			buf[o+bw] = r.choose2(v00, v01)
			buf[o+1] = r.choose2(v00, v10)
			if fuzzy {
				buf[o+bw+1] = r.choose4(v00, v10, v01, v11)
			} else {
				buf[o+bw+1] = r.modeOrRandom(v00, v10, v01, v11)
			}
		}
	}
	return cropBuffer(buf, bw, a, a.X-(p.X<<1), a.Z-(p.Z<<1))
}

// cropBuffer 從寬 bw 的緩衝區 (ox, oz) 處切出 a。
func cropBuffer(buf []int32, bw int, a Area, ox, oz int) Map {
	out := NewMap(a)
	for j := 0; j < a.H; j++ {
		src := (j+oz)*bw + ox
		copy(out.Data[j*a.W:(j+1)*a.W], buf[src:src+a.W])
	}
	return out
}

func zoom(r *rng, ps []Map, a Area) Map      { return zoomWith(r, &ps[0], a, false) }
func fuzzyZoom(r *rng, ps []Map, a Area) Map { return zoomWith(r, &ps[0], a, true) }

func addIsland(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		c, nw, ne, sw, se := diag(p, i, j)
		if c != 0 || (nw == 0 && ne == 0 && sw == 0 && se == 0) {
			if c > 0 && (nw == 0 || ne == 0 || sw == 0 || se == 0) {
				if r.nextInt(5) == 0 {
					if c == landClimateFreeze {
						return landClimateFreeze
					}
					return 0
				}
			}
			return c
		}
		// 海洋格但有陸地鄰居：以水庫抽樣挑一個鄰居
		n := int32(1)
		v := int32(1)
		for _, x := range [4]int32{nw, ne, sw, se} {
			if x != 0 {
				if r.nextInt(n) == 0 {
					v = x
				}
				n++
			}
		}
		if r.nextInt(3) == 0 {
			return v
		}
		if v == landClimateFreeze {
			return landClimateFreeze
		}
		return 0
	})
	return out
}

func removeTooMuchOcean(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		c, n, e, w, s := cross(p, i, j)
		if c == 0 && n == 0 && e == 0 && w == 0 && s == 0 && r.nextInt(2) == 0 {
			return 1
		}
		return c
	})
	return out
}

func addSnow(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		c := p.rel(i+1, j+1)
		if c == 0 {
			return 0
		}
		switch r.nextInt(6) {
		case 0:
			return landClimateFreeze
		case 1:
			return landClimateCold
		default:
			return landClimateWarm
		}
	})
	return out
}

func anyOf(v int32, xs ...int32) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func coolWarm(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		c, n, e, w, s := cross(p, i, j)
		if c == landClimateWarm && (anyOf(landClimateCold, n, e, w, s) || anyOf(landClimateFreeze, n, e, w, s)) {
			return landClimateMedium
		}
		return c
	})
	return out
}

func heatIce(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		c, n, e, w, s := cross(p, i, j)
		if c == landClimateFreeze && (anyOf(landClimateMedium, n, e, w, s) || anyOf(landClimateWarm, n, e, w, s)) {
			return landClimateCold
		}
		return c
	})
	return out
}

// special 在陸地格以 1/13 機率標記 4 bits 的特殊值（之後決定 mesa / jungle / mega taiga）。
func special(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		v := p.rel(i, j)
		if v != 0 && r.nextInt(13) == 0 {
			v |= ((1 + r.nextInt(15)) << specialShift) & specialMask
		}
		return v
	})
	return out
}

func addMushroomIsland(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		c, nw, ne, sw, se := diag(p, i, j)
		if c == 0 && nw == 0 && ne == 0 && sw == 0 && se == 0 && r.nextInt(100) == 0 {
			return MushroomIsland
		}
		return c
	})
	return out
}

func deepOcean(_ *rng, ps []Map, a Area) Map {
	p := &ps[0]
	out := NewMap(a)
	for j := 0; j < a.H; j++ {
		for i := 0; i < a.W; i++ {
			c, n, e, w, s := cross(p, i, j)
			oceans := 0
			for _, x := range [4]int32{n, e, w, s} {
				if x == 0 {
					oceans++
				}
			}
			if c == 0 && oceans > 3 {
				c = DeepOcean
			}
			out.Data[j*a.W+i] = c
		}
	}
	return out
}
