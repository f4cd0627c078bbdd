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

// Biome id（1.7）
const (
	Ocean              int32 = 0
	Plains             int32 = 1
	Desert             int32 = 2
	ExtremeHills       int32 = 3
	Forest             int32 = 4
	Taiga              int32 = 5
	Swampland          int32 = 6
	River              int32 = 7
	Hell               int32 = 8
	Sky                int32 = 9
	FrozenOcean        int32 = 10
	FrozenRiver        int32 = 11
	IcePlains          int32 = 12
	IceMountains       int32 = 13
	MushroomIsland     int32 = 14
	MushroomShore      int32 = 15
	Beach              int32 = 16
	DesertHills        int32 = 17
	ForestHills        int32 = 18
	TaigaHills         int32 = 19
	ExtremeHillsEdge   int32 = 20
	Jungle             int32 = 21
	JungleHills        int32 = 22
	JungleEdge         int32 = 23
	DeepOcean          int32 = 24
	StoneBeach         int32 = 25
	ColdBeach          int32 = 26
	BirchForest        int32 = 27
	BirchForestHills   int32 = 28
	RoofedForest       int32 = 29
	ColdTaiga          int32 = 30
	ColdTaigaHills     int32 = 31
	MegaTaiga          int32 = 32
	MegaTaigaHills     int32 = 33
	ExtremeHillsPlus   int32 = 34
	Savanna            int32 = 35
	SavannaPlateau     int32 = 36
	Mesa               int32 = 37
	MesaPlateauF       int32 = 38
	MesaPlateau        int32 = 39
	SunflowerPlains    int32 = Plains + 128
	mutationOffset     int32 = 128
	maxBiomeID         int32 = 256
	specialMask        int32 = 0xF00
	specialShift             = 8
	landClimateWarm    int32 = 1
	landClimateMedium  int32 = 2
	landClimateCold    int32 = 3
	landClimateFreeze  int32 = 4
)

// TempCategory 溫度分類。
type TempCategory uint8

const (
	TempOcean TempCategory = iota
	TempCold
	TempMedium
	TempWarm
)

// Class 對應生成器中的 biome 類別；變種 biome 與其原型同類。
type Class uint8

const (
	ClassNone Class = iota
	ClassOcean
	ClassPlains
	ClassDesert
	ClassHills
	ClassForest
	ClassTaiga
	ClassSwamp
	ClassRiver
	ClassHell
	ClassEnd
	ClassSnow
	ClassMushroom
	ClassBeach
	ClassJungle
	ClassStoneBeach
	ClassSavanna
	ClassMesa
)

// Biome 為不可變的屬性列。
type Biome struct {
	ID    int32
	Name  string
	Temp  float32
	Class Class
	Snowy bool
}

// Category 依溫度分類；海洋類固定為 TempOcean。
func (b Biome) Category() TempCategory {
	switch {
	case b.Class == ClassOcean:
		return TempOcean
	case b.Temp < 0.2:
		return TempCold
	case b.Temp < 1.0:
		return TempMedium
	default:
		return TempWarm
	}
}

// Table 為 id -> Biome 的查表，未定義的 id 其 Class 為 ClassNone。
type Table [maxBiomeID]Biome

// Biomes 為 1.7 的 biome 表，程式啟動時建立後不再修改。
var Biomes = buildTable()

func buildTable() *Table {
	t := &Table{}
	base := []Biome{
		{Ocean, "ocean", 0.5, ClassOcean, false},
		{Plains, "plains", 0.8, ClassPlains, false},
		{Desert, "desert", 2.0, ClassDesert, false},
		{ExtremeHills, "extreme_hills", 0.2, ClassHills, false},
		{Forest, "forest", 0.7, ClassForest, false},
		{Taiga, "taiga", 0.25, ClassTaiga, false},
		{Swampland, "swampland", 0.8, ClassSwamp, false},
		{River, "river", 0.5, ClassRiver, false},
		{Hell, "hell", 2.0, ClassHell, false},
		{Sky, "sky", 0.5, ClassEnd, false},
		{FrozenOcean, "frozen_ocean", 0.0, ClassOcean, true},
		{FrozenRiver, "frozen_river", 0.0, ClassRiver, true},
		{IcePlains, "ice_plains", 0.0, ClassSnow, true},
		{IceMountains, "ice_mountains", 0.0, ClassSnow, true},
		{MushroomIsland, "mushroom_island", 0.9, ClassMushroom, false},
		{MushroomShore, "mushroom_island_shore", 0.9, ClassMushroom, false},
		{Beach, "beach", 0.8, ClassBeach, false},
		{DesertHills, "desert_hills", 2.0, ClassDesert, false},
		{ForestHills, "forest_hills", 0.7, ClassForest, false},
		{TaigaHills, "taiga_hills", 0.25, ClassTaiga, false},
		{ExtremeHillsEdge, "extreme_hills_edge", 0.2, ClassHills, false},
		{Jungle, "jungle", 0.95, ClassJungle, false},
		{JungleHills, "jungle_hills", 0.95, ClassJungle, false},
		{JungleEdge, "jungle_edge", 0.95, ClassJungle, false},
		{DeepOcean, "deep_ocean", 0.5, ClassOcean, false},
		{StoneBeach, "stone_beach", 0.2, ClassStoneBeach, false},
		{ColdBeach, "cold_beach", 0.05, ClassBeach, true},
		{BirchForest, "birch_forest", 0.6, ClassForest, false},
		{BirchForestHills, "birch_forest_hills", 0.6, ClassForest, false},
		{RoofedForest, "roofed_forest", 0.7, ClassForest, false},
		{ColdTaiga, "cold_taiga", -0.5, ClassTaiga, true},
		{ColdTaigaHills, "cold_taiga_hills", -0.5, ClassTaiga, true},
		{MegaTaiga, "mega_taiga", 0.3, ClassTaiga, false},
		{MegaTaigaHills, "mega_taiga_hills", 0.3, ClassTaiga, false},
		{ExtremeHillsPlus, "extreme_hills_plus", 0.2, ClassHills, false},
		{Savanna, "savanna", 1.2, ClassSavanna, false},
		{SavannaPlateau, "savanna_plateau", 1.0, ClassSavanna, false},
		{Mesa, "mesa", 2.0, ClassMesa, false},
		{MesaPlateauF, "mesa_plateau_f", 2.0, ClassMesa, false},
		{MesaPlateau, "mesa_plateau", 2.0, ClassMesa, false},
	}
	for _, b := range base {
		t[b.ID] = b
	}
	// 變種：id = 原型 + 128，屬性沿用原型
	mutated := map[int32]string{
		Plains: "sunflower_plains", Desert: "desert_m", ExtremeHills: "extreme_hills_m",
		Forest: "flower_forest", Taiga: "taiga_m", Swampland: "swampland_m",
		IcePlains: "ice_plains_spikes", Jungle: "jungle_m", JungleEdge: "jungle_edge_m",
		BirchForest: "birch_forest_m", BirchForestHills: "birch_forest_hills_m",
		RoofedForest: "roofed_forest_m", ColdTaiga: "cold_taiga_m", MegaTaiga: "mega_spruce_taiga",
		MegaTaigaHills: "mega_spruce_taiga_hills", ExtremeHillsPlus: "extreme_hills_plus_m",
		Savanna: "savanna_m", SavannaPlateau: "savanna_plateau_m", Mesa: "mesa_bryce",
		MesaPlateauF: "mesa_plateau_f_m", MesaPlateau: "mesa_plateau_m",
	}
	for id, name := range mutated {
		b := t[id]
		b.ID = id + mutationOffset
		b.Name = name
		t[b.ID] = b
	}
	return t
}

// Get 回傳 biome 與是否存在。
func (t *Table) Get(id int32) (Biome, bool) {
	if id < 0 || id >= maxBiomeID || t[id].Class == ClassNone {
		return Biome{}, false
	}
	return t[id], true
}

// Valid 判斷 id 是否為已定義 biome。
func (t *Table) Valid(id int32) bool {
	_, ok := t.Get(id)
	return ok
}

// Name 回傳名稱，未定義時回傳空字串。
func (t *Table) Name(id int32) string {
	b, _ := t.Get(id)
	return b.Name
}

// ByName 由名稱反查 id。
func (t *Table) ByName(name string) (int32, bool) {
	for i := range t {
		if t[i].Class != ClassNone && t[i].Name == name {
			return int32(i), true
		}
	}
	return 0, false
}

func isOceanic(id int32) bool {
	return id == Ocean || id == DeepOcean || id == FrozenOcean
}

func (t *Table) classOf(id int32) Class {
	b, _ := t.Get(id)
	return b.Class
}

// equalOrSameClass : 相同 id，或兩者皆為 mesa plateau，或同類別。
func (t *Table) equalOrSameClass(a, b int32) bool {
	if a == b {
		return true
	}
	if a == MesaPlateauF || a == MesaPlateau {
		return b == MesaPlateauF || b == MesaPlateau
	}
	ca, cb := t.classOf(a), t.classOf(b)
	return ca != ClassNone && cb != ClassNone && ca == cb
}

// canBeNeighbors : 同類，或溫度分類相同，或任一方為溫和。
func (t *Table) canBeNeighbors(a, b int32) bool {
	if t.equalOrSameClass(a, b) {
		return true
	}
	ba, okA := t.Get(a)
	bb, okB := t.Get(b)
	if !okA || !okB {
		return false
	}
	ta, tb := ba.Category(), bb.Category()
	return ta == tb || ta == TempMedium || tb == TempMedium
}
