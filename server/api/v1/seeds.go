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
	"github.com/zintix-labs/seedlab/sdk/seed"
	"github.com/zintix-labs/seedlab/sdk/spawner"
)

// 單次 spawner 分群的上限
const maxSpawners = 1 << 14

// Extend48 : GET /v1/extend48?seed=
func (h *Handler) Extend48(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Seed48 int64   `json:"seed48"`
		Seeds  []int64 `json:"seeds"`
	}
	s, err := queryInt64(r.URL.Query(), "seed", nil)
	if err != nil {
		h.fail(w, r, "extend48", err)
		return
	}
	s48 := seed.Mask48(s)
	writeJSON(w, response{Seed48: s48, Seeds: h.lab.Extend48(s48)})
}

// Population : POST /v1/population
//
// kind 為 population（預設，chunk 座標）或 feature（方塊座標）。
func (h *Handler) Population(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Kind    string        `json:"kind"`
		Triples []seed.Triple `json:"triples"`
	}
	type response struct {
		Seeds    []int64 `json:"seeds"`
		Extended []int64 `json:"extended"`
	}
	req := new(request)
	if err := decode(w, r, req); err != nil {
		h.fail(w, r, "population", err)
		return
	}
	var (
		seeds []int64
		err   error
	)
	switch req.Kind {
	case "", "population":
		seeds, err = seed.ChunkPopulationSeedToWorldSeed(req.Triples)
	case "feature":
		seeds, err = seed.FeatureSeedToWorldSeed(req.Triples)
	default:
		err = errs.Malformedf("kind must be population or feature, got %q", req.Kind)
	}
	if err != nil {
		h.fail(w, r, "population", err)
		return
	}
	resp := response{Seeds: seeds, Extended: []int64{}}
	for _, s := range seeds {
		resp.Extended = append(resp.Extended, seed.Extend48(s)...)
	}
	if resp.Seeds == nil {
		resp.Seeds = []int64{}
	}
	writeJSON(w, resp)
}

// Spawners : POST /v1/spawners
func (h *Handler) Spawners(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Spawners []spawner.Spawner `json:"spawners"`
		Strict   bool              `json:"strict"`
	}
	type response struct {
		Groups []spawner.Group `json:"groups"`
	}
	req := new(request)
	if err := decode(w, r, req); err != nil {
		h.fail(w, r, "spawners", err)
		return
	}
	if len(req.Spawners) > maxSpawners {
		h.fail(w, r, "spawners", errs.Malformedf("at most %d spawners per request", maxSpawners))
		return
	}
	var gs []spawner.Group
	if req.Strict {
		gs = spawner.FindMultiSpawnersStrict(req.Spawners)
	} else {
		gs = spawner.FindMultiSpawners(req.Spawners)
	}
	if gs == nil {
		gs = []spawner.Group{}
	}
	writeJSON(w, response{Groups: gs})
}
