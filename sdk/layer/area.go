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

import "fmt"

// Unknown 表示該格沒有觀測值。
const Unknown int32 = -1

// Area 為軸對齊矩形：左上 (X, Z)，寬 W、高 H。
type Area struct {
	X int `json:"x" yaml:"x"`
	Z int `json:"z" yaml:"z"`
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

func (a Area) Size() int {
	if a.W <= 0 || a.H <= 0 {
		return 0
	}
	return a.W * a.H
}

func (a Area) Empty() bool { return a.Size() == 0 }

func (a Area) Contains(x, z int) bool {
	return x >= a.X && x < a.X+a.W && z >= a.Z && z < a.Z+a.H
}

func (a Area) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", a.X, a.Z, a.W, a.H)
}

// Pad 四周各擴 n 格。
func (a Area) Pad(n int) Area {
	return Area{X: a.X - n, Z: a.Z - n, W: a.W + 2*n, H: a.H + 2*n}
}

// Bounds 回傳包含所有點的最小 Area；空輸入回傳零值。
func Bounds(pts [][2]int) Area {
	if len(pts) == 0 {
		return Area{}
	}
	minX, minZ := pts[0][0], pts[0][1]
	maxX, maxZ := minX, minZ
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p[0]), max(maxX, p[0])
		minZ, maxZ = min(minZ, p[1]), max(maxZ, p[1])
	}
	return Area{X: minX, Z: minZ, W: maxX - minX + 1, H: maxZ - minZ + 1}
}

// Map 為 Area 上的 int32 格值，列優先（z 為列）。每個 stage 產生自己的 Map，不與上游共用。
type Map struct {
	Area
	Data []int32
}

// NewMap 建立全為 0 的 Map。
func NewMap(a Area) Map {
	if a.Empty() {
		return Map{Area: Area{X: a.X, Z: a.Z}}
	}
	return Map{Area: a, Data: make([]int32, a.Size())}
}

// Filled 建立全為 v 的 Map。
func Filled(a Area, v int32) Map {
	m := NewMap(a)
	for i := range m.Data {
		m.Data[i] = v
	}
	return m
}

// rel 以區域內相對座標取值（熱路徑，不檢查邊界）。
func (m *Map) rel(i, j int) int32 {
	return m.Data[j*m.W+i]
}

// At 以相對座標取值，越界回傳 Unknown。
func (m *Map) At(i, j int) int32 {
	if i < 0 || j < 0 || i >= m.W || j >= m.H {
		return Unknown
	}
	return m.Data[j*m.W+i]
}

// Get 以絕對座標取值，越界回傳 Unknown。
func (m *Map) Get(x, z int) int32 {
	return m.At(x-m.X, z-m.Z)
}

// Set 以絕對座標寫值，越界忽略並回傳 false。
func (m *Map) Set(x, z int, v int32) bool {
	i, j := x-m.X, z-m.Z
	if i < 0 || j < 0 || i >= m.W || j >= m.H {
		return false
	}
	m.Data[j*m.W+i] = v
	return true
}

// Crop 取出子區域（必須完全落在 m 內）。
func (m *Map) Crop(a Area) Map {
	out := NewMap(a)
	for j := 0; j < a.H; j++ {
		src := (a.Z-m.Z+j)*m.W + (a.X - m.X)
		copy(out.Data[j*a.W:(j+1)*a.W], m.Data[src:src+a.W])
	}
	return out
}

// Clone 深拷貝。
func (m Map) Clone() Map {
	out := m
	out.Data = append([]int32(nil), m.Data...)
	return out
}
