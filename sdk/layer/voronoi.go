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

import "slices"

// voronoiArea 回傳 4 倍放大所需的上游範圍；輸出座標先平移 -2。
func voronoiArea(a Area) Area {
	x, z := a.X-2, a.Z-2
	px, pz := x>>2, z>>2
	return Area{
		X: px,
		Z: pz,
		W: ((x+a.W-1)>>2) - px + 2,
		H: ((z+a.H-1)>>2) - pz + 2,
	}
}

func jitter(r *rng) float64 {
	return (float64(r.nextInt(1024))/1024.0 - 0.5) * 3.6
}

func sq(v float64) float64 { return v * v }

// voronoiZoom : 每個上游格的四個角各自抖動，輸出格取最近的角。
func voronoiZoom(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	bw := (p.W - 1) << 2
	bh := (p.H - 1) << 2
	buf := make([]int32, bw*bh)
	for j := 0; j < p.H-1; j++ {
		for i := 0; i < p.W-1; i++ {
			x := int64(p.X + i)
			z := int64(p.Z + j)
			r.setChunk(x<<2, z<<2)
			ax, az := jitter(r), jitter(r)
			r.setChunk((x+1)<<2, z<<2)
			bx, bz := jitter(r)+4.0, jitter(r)
			r.setChunk(x<<2, (z+1)<<2)
			cx, cz := jitter(r), jitter(r)+4.0
			r.setChunk((x+1)<<2, (z+1)<<2)
			dx, dz := jitter(r)+4.0, jitter(r)+4.0

			v00 := p.rel(i, j) & 255
			v10 := p.rel(i+1, j) & 255
			v01 := p.rel(i, j+1) & 255
			v11 := p.rel(i+1, j+1) & 255
			for row := 0; row < 4; row++ {
				o := ((j<<2)+row)*bw + (i << 2)
				fr := float64(row)
				for col := 0; col < 4; col++ {
					fc := float64(col)
					da := sq(fr-az) + sq(fc-ax)
					db := sq(fr-bz) + sq(fc-bx)
					dc := sq(fr-cz) + sq(fc-cx)
					dd := sq(fr-dz) + sq(fc-dx)
					switch {
					case da < db && da < dc && da < dd:
						buf[o+col] = v00
					case db < da && db < dc && db < dd:
						buf[o+col] = v10
					case dc < da && dc < db && dc < dd:
						buf[o+col] = v01
					default:
						buf[o+col] = v11
					}
				}
			}
		}
	}
	return cropBuffer(buf, bw, a, a.X-2-(p.X<<2), a.Z-2-(p.Z<<2))
}

// ReverseVoronoi 將高解析度 Map 以 4x4 區塊多數決還原成 1:4 Map。
// 上游格 P 主要覆蓋絕對座標 [4P, 4P+4)，因此區塊以 4 對齊。
// Unknown 格不計票；整塊無票時為 Unknown；同票取最小 id。零面積回傳空 Map。
func ReverseVoronoi(m Map) Map {
	if m.Empty() {
		return Map{}
	}
	px, pz := m.X>>2, m.Z>>2
	out := NewMap(Area{
		X: px,
		Z: pz,
		W: ((m.X + m.W - 1) >> 2) - px + 1,
		H: ((m.Z + m.H - 1) >> 2) - pz + 1,
	})
	votes := make(map[int32]int, 16)
	for oj := 0; oj < out.H; oj++ {
		for oi := 0; oi < out.W; oi++ {
			clear(votes)
			bx, bz := (out.X+oi)<<2, (out.Z+oj)<<2
			for z := bz; z < bz+4; z++ {
				for x := bx; x < bx+4; x++ {
					if v := m.Get(x, z); v != Unknown {
						votes[v]++
					}
				}
			}
			out.Data[oj*out.W+oi] = majority(votes)
		}
	}
	return out
}

func majority(votes map[int32]int) int32 {
	if len(votes) == 0 {
		return Unknown
	}
	ids := make([]int32, 0, len(votes))
	for id := range votes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	best := ids[0]
	for _, id := range ids[1:] {
		if votes[id] > votes[best] {
			best = id
		}
	}
	return best
}
