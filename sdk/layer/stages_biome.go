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

// 各氣候帶可抽到的 biome
var (
	warmBiomes   = []int32{Desert, Desert, Desert, Savanna, Savanna, Plains}
	mediumBiomes = []int32{Forest, RoofedForest, ExtremeHills, Plains, BirchForest, Swampland}
	coldBiomes   = []int32{Forest, ExtremeHills, Taiga, Plains}
	iceBiomes    = []int32{IcePlains, IcePlains, IcePlains, ColdTaiga}
)

func pick(r *rng, xs []int32) int32 {
	return xs[r.nextInt(int32(len(xs)))]
}

// biomes 將氣候值 (1..4 + special bits) 轉成 biome id。
func biomes(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		v := p.rel(i, j)
		sp := (v & specialMask) >> specialShift
		v &^= specialMask
		switch {
		case isOceanic(v), v == MushroomIsland:
			return v
		case v == landClimateWarm:
			if sp > 0 {
				if r.nextInt(3) == 0 {
					return MesaPlateau
				}
				return MesaPlateauF
			}
			return pick(r, warmBiomes)
		case v == landClimateMedium:
			if sp > 0 {
				return Jungle
			}
			return pick(r, mediumBiomes)
		case v == landClimateCold:
			if sp > 0 {
				return MegaTaiga
			}
			return pick(r, coldBiomes)
		case v == landClimateFreeze:
			return pick(r, iceBiomes)
		}
		return MushroomIsland
	})
	return out
}

// biomeEdge 在不相容的 biome 之間插入過渡帶。
func biomeEdge(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	t := Biomes
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		c, n, e, w, s := cross(p, i, j)
		// extreme hills：鄰居不能共存時改為 edge
		if t.equalOrSameClass(c, ExtremeHills) {
			if t.canBeNeighbors(n, ExtremeHills) && t.canBeNeighbors(e, ExtremeHills) &&
				t.canBeNeighbors(w, ExtremeHills) && t.canBeNeighbors(s, ExtremeHills) {
				return c
			}
			return ExtremeHillsEdge
		}
		for _, rule := range [3][2]int32{{MesaPlateauF, Mesa}, {MesaPlateau, Mesa}, {MegaTaiga, Taiga}} {
			if c != rule[0] {
				continue
			}
			if t.equalOrSameClass(n, rule[0]) && t.equalOrSameClass(e, rule[0]) &&
				t.equalOrSameClass(w, rule[0]) && t.equalOrSameClass(s, rule[0]) {
				return c
			}
			return rule[1]
		}
		switch c {
		case Desert:
			if anyOf(IcePlains, n, e, w, s) {
				return ExtremeHillsPlus
			}
		case Swampland:
			if anyOf(Desert, n, e, w, s) || anyOf(ColdTaiga, n, e, w, s) || anyOf(IcePlains, n, e, w, s) {
				return Plains
			}
			if anyOf(Jungle, n, e, w, s) {
				return JungleEdge
			}
		}
		return c
	})
	return out
}

// hills 依 river 噪聲（第二個上游）決定丘陵與變種。
func hills(r *rng, ps []Map, a Area) Map {
	p, rv := &ps[0], &ps[1]
	t := Biomes
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		c := p.rel(i+1, j+1)
		noise := rv.rel(i+1, j+1)
		mutate := (noise-2)%29 == 0
		if c != 0 && noise >= 2 && (noise-2)%29 == 1 && c < mutationOffset {
			if t.Valid(c + mutationOffset) {
				return c + mutationOffset
			}
			return c
		}
		if r.nextInt(3) != 0 && !mutate {
			return c
		}
		h := c
		switch {
		case c == Desert:
			h = DesertHills
		case c == Forest:
			h = ForestHills
		case c == BirchForest:
			h = BirchForestHills
		case c == RoofedForest:
			h = Plains
		case c == Taiga:
			h = TaigaHills
		case c == MegaTaiga:
			h = MegaTaigaHills
		case c == ColdTaiga:
			h = ColdTaigaHills
		case c == Plains:
			if r.nextInt(3) == 0 {
				h = ForestHills
			} else {
				h = Forest
			}
		case c == IcePlains:
			h = IceMountains
		case c == Jungle:
			h = JungleHills
		case c == Ocean:
			h = DeepOcean
		case c == ExtremeHills:
			h = ExtremeHillsPlus
		case c == Savanna:
			h = SavannaPlateau
		case t.equalOrSameClass(c, MesaPlateauF):
			h = Mesa
		case c == DeepOcean && r.nextInt(3) == 0:
			if r.nextInt(2) == 0 {
				h = Plains
			} else {
				h = Forest
			}
		}
		if mutate && h != c {
			if t.Valid(h + mutationOffset) {
				h += mutationOffset
			} else {
				h = c
			}
		}
		if h == c {
			return c
		}
		_, n, e, w, s := cross(p, i, j)
		same := 0
		for _, x := range [4]int32{n, e, w, s} {
			if t.equalOrSameClass(x, c) {
				same++
			}
		}
		if same >= 3 {
			return h
		}
		return c
	})
	return out
}

func rareBiome(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		c := p.rel(i+1, j+1)
		if r.nextInt(57) == 0 && c == Plains {
			return SunflowerPlains
		}
		return c
	})
	return out
}

func jungleCompatible(t *Table, id int32) bool {
	if t.classOf(id) == ClassJungle {
		return true
	}
	return id == Forest || id == Taiga || isOceanic(id)
}

func noneOceanic(xs ...int32) bool {
	for _, x := range xs {
		if isOceanic(x) {
			return false
		}
	}
	return true
}

// shore 在陸地與海洋交界放沙灘、石岸等。
func shore(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	t := Biomes
	out := NewMap(a)
	forEach(r, &out, func(i, j int) int32 {
		c, n, e, w, s := cross(p, i, j)
		b, ok := t.Get(c)
		switch {
		case c == MushroomIsland:
			if anyOf(Ocean, n, e, w, s) {
				return MushroomShore
			}
			return c
		case ok && b.Class == ClassJungle:
			if !jungleCompatible(t, n) || !jungleCompatible(t, e) || !jungleCompatible(t, w) || !jungleCompatible(t, s) {
				return JungleEdge
			}
			if noneOceanic(n, e, w, s) {
				return c
			}
			return Beach
		case c == ExtremeHills || c == ExtremeHillsPlus || c == ExtremeHillsEdge:
			return edgeReplace(c, StoneBeach, n, e, w, s)
		case ok && b.Snowy:
			return edgeReplace(c, ColdBeach, n, e, w, s)
		case c == Mesa || c == MesaPlateauF:
			if !noneOceanic(n, e, w, s) {
				return c
			}
			if t.classOf(n) == ClassMesa && t.classOf(e) == ClassMesa && t.classOf(w) == ClassMesa && t.classOf(s) == ClassMesa {
				return c
			}
			return Desert
		case c == Ocean || c == DeepOcean || c == River || c == Swampland:
			return c
		}
		if noneOceanic(n, e, w, s) {
			return c
		}
		return Beach
	})
	return out
}

// edgeReplace : 陸地格若鄰接海洋則換成 replacement。
func edgeReplace(c, replacement int32, n, e, w, s int32) int32 {
	if isOceanic(c) || noneOceanic(n, e, w, s) {
		return c
	}
	return replacement
}

func smooth(r *rng, ps []Map, a Area) Map {
	p := &ps[0]
	out := NewMap(a)
	for j := 0; j < a.H; j++ {
		for i := 0; i < a.W; i++ {
			c, n, e, w, s := cross(p, i, j)
			switch {
			case w == e && n == s:
				r.setChunk(int64(a.X+i), int64(a.Z+j))
				if r.nextInt(2) == 0 {
					c = w
				} else {
					c = n
				}
			case n == s:
				c = n
			case w == e:
				c = w
			}
			out.Data[j*a.W+i] = c
		}
	}
	return out
}
