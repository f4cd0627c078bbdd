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

// Package evidence 定義搜尋所用的觀測資料（slime chunk、biome 取樣）與其 YAML/JSON 格式。
//
// Evidence 讀入後即不再修改；搜尋過程只讀取。
package evidence

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/layer"
	"github.com/zintix-labs/seedlab/sdk/slime"
)

// CurrentVersion 為 generate 產生的預設版本字串。
const CurrentVersion = "1.7"

// WorldBorder 為方塊座標的絕對值上限（世界邊界）。
const WorldBorder = 30_000_000

// Options 為容錯設定。
type Options struct {
	// ErrorMarginSlime 允許 SlimeChunks 中不符的數量
	ErrorMarginSlime int `yaml:"error_margin_slime_chunks" json:"error_margin_slime_chunks" validate:"gte=0"`
	// ErrorMarginSlimeNeg 允許 NegativeSlimeChunks 中不符的數量
	ErrorMarginSlimeNeg int `yaml:"error_margin_slime_chunks_negative" json:"error_margin_slime_chunks_negative" validate:"gte=0"`
	// ErrorMarginBiome 允許 biome 取樣不符的數量
	ErrorMarginBiome int `yaml:"error_margin_biome" json:"error_margin_biome" validate:"gte=0"`
	// NextLong 為 true 時 seed 由 nextLong() 產生，只需檢查 Extend48 的延伸
	NextLong bool `yaml:"next_long" json:"next_long"`
}

// Evidence 為一組觀測。
type Evidence struct {
	Version             string               `yaml:"version"               json:"version"               validate:"required,mcversion"`
	Biomes              map[int32][][2]int64 `yaml:"biomes"                json:"biomes"`
	SlimeChunks         []slime.Chunk        `yaml:"slime_chunks"          json:"slime_chunks"`
	NegativeSlimeChunks []slime.Chunk        `yaml:"negative_slime_chunks" json:"negative_slime_chunks"`
	Options             Options              `yaml:"options"               json:"options"`
}

var (
	validate  *validator.Validate
	versionRe = regexp.MustCompile(`^1\.\d{1,2}(\.\d{1,2})?$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("mcversion", func(fl validator.FieldLevel) bool {
		return versionRe.MatchString(fl.Field().String())
	})
}

// Validate 檢查欄位格式與語意：至少一類觀測、biome id 合法且取樣在世界邊界內、同一 chunk 不可同時為正負。
func (e *Evidence) Validate() error {
	if err := validate.Struct(e); err != nil {
		var msgs []string
		if ves, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ves {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			msgs = append(msgs, err.Error())
		}
		return errs.Malformedf("invalid evidence: %s", strings.Join(msgs, "; "))
	}
	if len(e.SlimeChunks) == 0 && len(e.NegativeSlimeChunks) == 0 && e.BiomeCount() == 0 {
		return errs.Malformedf("evidence has no observations")
	}
	for id, pts := range e.Biomes {
		if !layer.Biomes.Valid(id) {
			return errs.Malformedf("unknown biome id %d", id)
		}
		if len(pts) == 0 {
			return errs.Malformedf("biome %d has no samples", id)
		}
		for _, p := range pts {
			if p[0] < -WorldBorder || p[0] > WorldBorder || p[1] < -WorldBorder || p[1] > WorldBorder {
				return errs.Malformedf("biome %d sample (%d,%d) is outside the world border", id, p[0], p[1])
			}
		}
	}
	pos := make(map[slime.Chunk]struct{}, len(e.SlimeChunks))
	for _, c := range e.SlimeChunks {
		pos[c] = struct{}{}
	}
	for _, c := range e.NegativeSlimeChunks {
		if _, ok := pos[c]; ok {
			return errs.Malformedf("chunk (%d,%d) is both slime and non-slime", c.X, c.Z)
		}
	}
	return nil
}

// Sample 為單一 biome 取樣點（方塊座標）。
type Sample struct {
	X     int64 `json:"x"`
	Z     int64 `json:"z"`
	Biome int32 `json:"biome"`
}

// BiomeCount 回傳 biome 取樣總數。
func (e *Evidence) BiomeCount() int {
	n := 0
	for _, pts := range e.Biomes {
		n += len(pts)
	}
	return n
}

// BiomeSamples 攤平成取樣列表，依 (Z, X, Biome) 排序。
func (e *Evidence) BiomeSamples() []Sample {
	out := make([]Sample, 0, e.BiomeCount())
	for id, pts := range e.Biomes {
		for _, p := range pts {
			out = append(out, Sample{X: p[0], Z: p[1], Biome: id})
		}
	}
	slices.SortFunc(out, func(a, b Sample) int {
		return cmp.Or(cmp.Compare(a.Z, b.Z), cmp.Compare(a.X, b.X), cmp.Compare(a.Biome, b.Biome))
	})
	return out
}

// AddBiome 新增一筆取樣。
func (e *Evidence) AddBiome(id int32, x, z int64) {
	if e.Biomes == nil {
		e.Biomes = make(map[int32][][2]int64)
	}
	e.Biomes[id] = append(e.Biomes[id], [2]int64{x, z})
}
