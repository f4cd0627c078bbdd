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

package v1

import (
	"net/http"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/layer"
	"github.com/zintix-labs/seedlab/sdk/slime"
)

// 單次查詢的邊長上限
const maxSide = 256

type grid struct {
	layer.Area
	Data []int32 `json:"data"`
}

type viewQuery struct {
	seed  int64
	area  layer.Area
	scale int
}

func parseView(r *http.Request, defSide int64) (viewQuery, error) {
	q := r.URL.Query()
	var (
		v   viewQuery
		err error
	)
	if v.seed, err = queryInt64(q, "seed", nil); err != nil {
		return v, err
	}
	if v.area.X, err = queryInt(q, "x", 0, -(1 << 25), 1<<25); err != nil {
		return v, err
	}
	if v.area.Z, err = queryInt(q, "z", 0, -(1 << 25), 1<<25); err != nil {
		return v, err
	}
	if v.area.W, err = queryInt(q, "w", defSide, 1, maxSide); err != nil {
		return v, err
	}
	if v.area.H, err = queryInt(q, "h", defSide, 1, maxSide); err != nil {
		return v, err
	}
	if v.scale, err = queryInt(q, "scale", 1, 1, 4); err != nil {
		return v, err
	}
	if v.scale != 1 && v.scale != 4 {
		return v, errs.Malformedf("scale must be 1 or 4")
	}
	return v, nil
}

// Slime : GET /v1/slime?seed=&x=&z=&w=&h=，回傳 chunk 格（列優先）。
func (h *Handler) Slime(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Seed  int64         `json:"seed"`
		Area  layer.Area    `json:"area"`
		Slime []bool        `json:"slime"`
		Hits  []slime.Chunk `json:"hits"`
	}
	v, err := parseView(r, 16)
	if err != nil {
		h.fail(w, r, "slime", err)
		return
	}
	a := v.area
	g := slime.Grid(v.seed, int32(a.X), int32(a.Z), a.W, a.H)
	resp := response{Seed: v.seed, Area: a, Slime: g, Hits: []slime.Chunk{}}
	for i, ok := range g {
		if ok {
			resp.Hits = append(resp.Hits, slime.Chunk{X: int32(a.X + i%a.W), Z: int32(a.Z + i/a.W)})
		}
	}
	writeJSON(w, resp)
}

// Biomes : GET /v1/biomes?seed=&x=&z=&w=&h=&scale=1|4
//
// scale=4 時座標為 1:4 格（RiverMix 解析度）。
func (h *Handler) Biomes(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Seed  int64            `json:"seed"`
		Scale int              `json:"scale"`
		Map   grid             `json:"map"`
		Names map[int32]string `json:"names"`
	}
	v, err := parseView(r, 64)
	if err != nil {
		h.fail(w, r, "biomes", err)
		return
	}
	var m layer.Map
	if v.scale == 4 {
		m, err = h.lab.Pipeline().Biomes4(v.seed, v.area)
	} else {
		m, err = h.lab.Pipeline().Biomes(v.seed, v.area)
	}
	if err != nil {
		h.fail(w, r, "biomes", err)
		return
	}
	names := make(map[int32]string)
	for _, id := range m.Data {
		if _, ok := names[id]; !ok {
			names[id] = layer.Biomes.Name(id)
		}
	}
	writeJSON(w, response{
		Seed:  v.seed,
		Scale: v.scale,
		Map:   grid{Area: m.Area, Data: m.Data},
		Names: names,
	})
}
