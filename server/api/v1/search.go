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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/evidence"
	"github.com/zintix-labs/seedlab/stats"
)

// 非 next_long 時，每個 48-bit seed 需檢查 2^16 個高位
const upperParts = 1 << 16

type searchResponse struct {
	Seeds  []int64             `json:"seeds"`
	Report *stats.SearchReport `json:"report"`
}

func respond(w http.ResponseWriter, res *seedlab.Result) {
	seeds := res.Seeds
	if seeds == nil {
		seeds = []int64{}
	}
	writeJSON(w, searchResponse{Seeds: seeds, Report: res.Report})
}

// checkEvidence : 缺少或不合法的證據一律 malformed。
func checkEvidence(ev *evidence.Evidence) error {
	if ev == nil {
		return errs.Malformedf("evidence is required")
	}
	return ev.Validate()
}

// checkSpace 套用伺服器的搜尋上限；HTTP 不接受全空間搜尋。
// unit 為每個候選實際要評估的次數，清單與範圍都以評估次數對 MaxSpan 計算。
func (h *Handler) checkSpace(cands []int64, lo, hi int64, unit int64) error {
	if cands != nil {
		if len(cands) > h.cfg.MaxCandidates {
			return errs.Malformedf("at most %d candidates per request, got %d", h.cfg.MaxCandidates, len(cands))
		}
		if uint64(len(cands)) > uint64(h.cfg.MaxSpan)/uint64(unit) {
			return errs.Malformedf("%d candidates x %d evaluations exceed server limit of %d", len(cands), unit, h.cfg.MaxSpan)
		}
		return nil
	}
	if hi <= lo {
		return errs.Malformedf("either candidates or a range lo < hi is required")
	}
	span := uint64(hi - lo)
	if span > uint64(h.cfg.MaxSpan)/uint64(unit) {
		return errs.Malformedf("range [%d, %d) exceeds server limit of %d evaluations", lo, hi, h.cfg.MaxSpan)
	}
	return nil
}

func (h *Handler) searchContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.cfg.SearchTimeout)
}

// shared 以請求內容的雜湊合併同時進行的相同搜尋；共用者沿用第一個請求的 ctx。
func (h *Handler) shared(ctx context.Context, kind string, key any, fn func(context.Context) (*seedlab.Result, error)) (*seedlab.Result, error) {
	b, err := json.Marshal(key)
	if err != nil {
		return nil, errs.Internalf("hash %s request: %v", kind, err)
	}
	sum := sha256.Sum256(b)
	k := kind + ":" + hex.EncodeToString(sum[:8])
	v, err, dup := h.flight.Do(k, func() (any, error) {
		return fn(ctx)
	})
	if dup {
		h.log.Debug("joined in-flight search", "key", k)
	}
	if err != nil {
		return nil, err
	}
	return v.(*seedlab.Result), nil
}

// Generate : POST /v1/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Seed    int64                    `json:"seed"`
		Options *seedlab.GenerateOptions `json:"options"`
	}
	req := new(request)
	if err := decode(w, r, req); err != nil {
		h.fail(w, r, "generate", err)
		return
	}
	o := seedlab.DefaultGenerateOptions()
	if req.Options != nil {
		o = *req.Options
	}
	ev, err := h.lab.Generate(req.Seed, o)
	if err != nil {
		h.fail(w, r, "generate", err)
		return
	}
	writeJSON(w, ev)
}

// Find : POST /v1/find，以 slime chunk 證據搜尋。
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Evidence *evidence.Evidence    `json:"evidence"`
		Search   seedlab.SearchOptions `json:"search"`
	}
	req := new(request)
	if err := decode(w, r, req); err != nil {
		h.fail(w, r, "find", err)
		return
	}
	if err := checkEvidence(req.Evidence); err != nil {
		h.fail(w, r, "find", err)
		return
	}
	if err := h.checkSpace(req.Search.Candidates, req.Search.Lo, req.Search.Hi, 1); err != nil {
		h.fail(w, r, "find", err)
		return
	}
	ctx, cancel := h.searchContext(r)
	defer cancel()
	res, err := h.shared(ctx, "find", req, func(ctx context.Context) (*seedlab.Result, error) {
		return h.lab.FindSlime(ctx, req.Evidence, req.Search)
	})
	if err != nil {
		h.fail(w, r, "find", err)
		return
	}
	respond(w, res)
}

// Rivers : POST /v1/rivers，以 biome 取樣搜尋。
func (h *Handler) Rivers(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Evidence *evidence.Evidence   `json:"evidence"`
		Rivers   seedlab.RiverOptions `json:"rivers"`
	}
	req := new(request)
	if err := decode(w, r, req); err != nil {
		h.fail(w, r, "rivers", err)
		return
	}
	if err := checkEvidence(req.Evidence); err != nil {
		h.fail(w, r, "rivers", err)
		return
	}
	unit := int64(upperParts)
	if req.Evidence.Options.NextLong {
		unit = 1
	}
	if err := h.checkSpace(req.Rivers.Candidates, req.Rivers.Lo, req.Rivers.Hi, unit); err != nil {
		h.fail(w, r, "rivers", err)
		return
	}
	ctx, cancel := h.searchContext(r)
	defer cancel()
	res, err := h.shared(ctx, "rivers", req, func(ctx context.Context) (*seedlab.Result, error) {
		return h.lab.FindBiomes(ctx, req.Evidence, req.Rivers)
	})
	if err != nil {
		h.fail(w, r, "rivers", err)
		return
	}
	respond(w, res)
}
