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

// Package layer 實作 1.7 世界生成的分層 biome pipeline。
//
// 每個 stage 為上游 Map 的純函式，亂數只由 world seed、stage base seed 與格子的絕對座標決定，
// 因此同一格的輸出與請求範圍如何切分無關。Pipeline 以明確的 DAG 描述 stage 之間的相依。
package layer

import (
	"fmt"

	"github.com/zintix-labs/seedlab/errs"
)

// Kind 為 stage 種類。
type Kind uint8

const (
	KindIsland Kind = iota
	KindZoom
	KindFuzzyZoom
	KindAddIsland
	KindRemoveTooMuchOcean
	KindAddSnow
	KindCoolWarm
	KindHeatIce
	KindSpecial
	KindAddMushroomIsland
	KindDeepOcean
	KindBiome
	KindBiomeEdge
	KindRiverInit
	KindHills
	KindRiver
	KindSmooth
	KindRareBiome
	KindShore
	KindRiverMix
	KindVoronoiZoom
	kindCount
)

// scale 描述輸出範圍如何映射回上游範圍。
type scale uint8

const (
	scaleNone    scale = iota // 無上游
	scaleSame                 // 同範圍
	scalePad                  // 同比例，四周擴 1 格
	scaleZoom                 // 2 倍
	scaleVoronoi              // 4 倍，平移 -2
)

type kindInfo struct {
	name    string
	fn      stage
	scale   scale
	parents int
}

var kinds = [kindCount]kindInfo{
	KindIsland:             {"island", island, scaleNone, 0},
	KindZoom:               {"zoom", zoom, scaleZoom, 1},
	KindFuzzyZoom:          {"fuzzy_zoom", fuzzyZoom, scaleZoom, 1},
	KindAddIsland:          {"add_island", addIsland, scalePad, 1},
	KindRemoveTooMuchOcean: {"remove_too_much_ocean", removeTooMuchOcean, scalePad, 1},
	KindAddSnow:            {"add_snow", addSnow, scalePad, 1},
	KindCoolWarm:           {"cool_warm", coolWarm, scalePad, 1},
	KindHeatIce:            {"heat_ice", heatIce, scalePad, 1},
	KindSpecial:            {"special", special, scaleSame, 1},
	KindAddMushroomIsland:  {"add_mushroom_island", addMushroomIsland, scalePad, 1},
	KindDeepOcean:          {"deep_ocean", deepOcean, scalePad, 1},
	KindBiome:              {"biome", biomes, scaleSame, 1},
	KindBiomeEdge:          {"biome_edge", biomeEdge, scalePad, 1},
	KindRiverInit:          {"river_init", riverInit, scaleSame, 1},
	KindHills:              {"hills", hills, scalePad, 2},
	KindRiver:              {"river", river, scalePad, 1},
	KindSmooth:             {"smooth", smooth, scalePad, 1},
	KindRareBiome:          {"rare_biome", rareBiome, scalePad, 1},
	KindShore:              {"shore", shore, scalePad, 1},
	KindRiverMix:           {"river_mix", riverMix, scaleSame, 2},
	KindVoronoiZoom:        {"voronoi_zoom", voronoiZoom, scaleVoronoi, 1},
}

func (k Kind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kinds[k].name
}

// parentArea 回傳計算 a 所需的上游範圍。
func (k Kind) parentArea(a Area) Area {
	switch kinds[k].scale {
	case scalePad:
		return a.Pad(1)
	case scaleZoom:
		return zoomArea(a)
	case scaleVoronoi:
		return voronoiArea(a)
	default:
		return a
	}
}

// Node 為 DAG 的一個節點；Parents 只能指向索引較小的節點。
type Node struct {
	Kind     Kind
	BaseSeed int64
	Parents  []int

	mixed int64
}

// Pipeline 為已建好的 stage DAG，建立後唯讀，可同時供多個 goroutine 使用。
type Pipeline struct {
	Nodes []Node
	// RiverMix 為 1:4 輸出節點，Out 為 1:1 輸出節點
	RiverMix int
	Out      int
}

// NewPipeline 檢查 DAG 並預先混合 base seed。
func NewPipeline(nodes []Node, riverMix, out int) (*Pipeline, error) {
	if len(nodes) == 0 {
		return nil, errs.Malformedf("empty pipeline")
	}
	ns := make([]Node, len(nodes))
	for i, n := range nodes {
		if n.Kind >= kindCount {
			return nil, errs.Malformedf("node %d: unknown kind %d", i, n.Kind)
		}
		if len(n.Parents) != kinds[n.Kind].parents {
			return nil, errs.Malformedf("node %d (%s): want %d parents, got %d", i, n.Kind, kinds[n.Kind].parents, len(n.Parents))
		}
		for _, p := range n.Parents {
			if p < 0 || p >= i {
				return nil, errs.Malformedf("node %d (%s): parent %d out of order", i, n.Kind, p)
			}
		}
		n.Parents = append([]int(nil), n.Parents...)
		n.mixed = MixBaseSeed(n.BaseSeed)
		ns[i] = n
	}
	if riverMix < 0 || riverMix >= len(ns) || out < 0 || out >= len(ns) {
		return nil, errs.Malformedf("output node out of range")
	}
	return &Pipeline{Nodes: ns, RiverMix: riverMix, Out: out}, nil
}

// builder 依序追加節點並回傳索引。
type builder struct {
	nodes []Node
}

func (b *builder) add(k Kind, base int64, parents ...int) int {
	b.nodes = append(b.nodes, Node{Kind: k, BaseSeed: base, Parents: parents})
	return len(b.nodes) - 1
}

func (b *builder) zooms(base int64, from, n int) int {
	for i := range n {
		from = b.add(KindZoom, base+int64(i), from)
	}
	return from
}

// DefaultBiomeSize 為預設世界類型的 biome 大小，LargeBiomeSize 為大型 biome 世界。
const (
	DefaultBiomeSize = 4
	LargeBiomeSize   = 6
)

// NewPipeline17 建立 1.7 的 biome DAG。biomeSize < 1 時使用 DefaultBiomeSize。
func NewPipeline17(biomeSize int) *Pipeline {
	if biomeSize < 1 {
		biomeSize = DefaultBiomeSize
	}
	b := &builder{}
	n := b.add(KindIsland, 1)
	n = b.add(KindFuzzyZoom, 2000, n)
	n = b.add(KindAddIsland, 1, n)
	n = b.add(KindZoom, 2001, n)
	n = b.add(KindAddIsland, 2, n)
	n = b.add(KindAddIsland, 50, n)
	n = b.add(KindAddIsland, 70, n)
	n = b.add(KindRemoveTooMuchOcean, 2, n)
	n = b.add(KindAddSnow, 2, n)
	n = b.add(KindAddIsland, 3, n)
	n = b.add(KindCoolWarm, 2, n)
	n = b.add(KindHeatIce, 2, n)
	n = b.add(KindSpecial, 3, n)
	n = b.add(KindZoom, 2002, n)
	n = b.add(KindZoom, 2003, n)
	n = b.add(KindAddIsland, 4, n)
	n = b.add(KindAddMushroomIsland, 5, n)
	ocean := b.add(KindDeepOcean, 4, n)

	// biome 支線
	n = b.add(KindBiome, 200, ocean)
	n = b.zooms(1000, n, 2)
	edge := b.add(KindBiomeEdge, 1000, n)

	// river 噪聲；hills 與 river 支線共用前兩次 zoom
	riverInit := b.add(KindRiverInit, 100, ocean)
	noise := b.zooms(1000, riverInit, 2)

	n = b.add(KindHills, 1000, edge, noise)
	n = b.add(KindRareBiome, 1001, n)
	for i := range biomeSize {
		n = b.add(KindZoom, 1000+int64(i), n)
		switch i {
		case 0:
			n = b.add(KindAddIsland, 3, n)
		case 1:
			n = b.add(KindShore, 1000, n)
		}
	}
	land := b.add(KindSmooth, 1000, n)

	n = b.zooms(1000, noise, biomeSize)
	n = b.add(KindRiver, 1, n)
	rivers := b.add(KindSmooth, 1000, n)

	mix := b.add(KindRiverMix, 100, land, rivers)
	out := b.add(KindVoronoiZoom, 10, mix)

	p, err := NewPipeline(b.nodes, mix, out)
	if err != nil {
		panic(err)
	}
	return p
}

type memoKey struct {
	node int
	area Area
}

// Generate 計算 node 在 area 上的輸出。
// 單次呼叫內相同 (node, area) 只計算一次；跨呼叫的重用交給 Cache。
func (p *Pipeline) Generate(world int64, a Area, node int) (Map, error) {
	if node < 0 || node >= len(p.Nodes) {
		return Map{}, errs.Malformedf("node %d out of range [0,%d)", node, len(p.Nodes))
	}
	if a.W < 0 || a.H < 0 {
		return Map{}, errs.Malformedf("negative area %s", a)
	}
	if a.Empty() {
		return NewMap(a), nil
	}
	memo := make(map[memoKey]Map)
	return p.gen(world, a, node, memo, nil), nil
}

func (p *Pipeline) gen(world int64, a Area, node int, memo map[memoKey]Map, c *Cache) Map {
	key := memoKey{node, a}
	if m, ok := memo[key]; ok {
		return m
	}
	if c != nil {
		if m, ok := c.get(world, a, node); ok {
			memo[key] = m
			return m
		}
	}
	n := &p.Nodes[node]
	pa := n.Kind.parentArea(a)
	ps := make([]Map, len(n.Parents))
	for i, parent := range n.Parents {
		ps[i] = p.gen(world, pa, parent, memo, c)
	}
	m := kinds[n.Kind].fn(newRNG(world, n.mixed), ps, a)
	memo[key] = m
	if c != nil {
		c.put(world, a, node, m)
	}
	return m
}

// Biomes 回傳 1:1（方塊）解析度的 biome Map。
func (p *Pipeline) Biomes(world int64, a Area) (Map, error) {
	return p.Generate(world, a, p.Out)
}

// Biomes4 回傳 1:4 解析度（Voronoi 之前）的 biome Map。
func (p *Pipeline) Biomes4(world int64, a Area) (Map, error) {
	return p.Generate(world, a, p.RiverMix)
}
