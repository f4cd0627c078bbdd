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

// Package v1 實作 /v1 下的 HTTP handler；每個 handler 只做參數解析與回應，運算交給 seedlab.Lab 與 sdk。
package v1

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/server/httperr"
	"github.com/zintix-labs/seedlab/server/svrcfg"
	"golang.org/x/sync/singleflight"
)

// 請求本文上限（證據 + 候選清單）
const maxBody = 32 << 20

type Handler struct {
	lab *seedlab.Lab
	cfg *svrcfg.SvrCfg
	log *slog.Logger
	// 相同內容的搜尋同時進來時只跑一次
	flight singleflight.Group
}

// NewHandler 的 cfg 必須已通過 Valid。
func NewHandler(lab *seedlab.Lab, cfg *svrcfg.SvrCfg) (*Handler, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	if cfg == nil || cfg.Log == nil {
		return nil, errs.NewFatal("validated server config is required")
	}
	return &Handler{lab: lab, cfg: cfg, log: cfg.Log}, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// fail 寫回錯誤並記錄 5xx / 408。
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	httperr.Log(h.log, msg, err)
	httperr.Errs(w, r, err)
}

// decode 嚴格解析 JSON 本文：未知欄位、多餘內容、超過上限都視為 malformed。
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return errs.Malformedf("request body exceeds %d bytes", tooBig.Limit)
		}
		return errs.MalformedWrap(err, "invalid json")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errs.Malformedf("invalid json: trailing data after body")
	}
	return nil
}

func queryInt64(q url.Values, name string, def *int64) (int64, error) {
	s := q.Get(name)
	if s == "" {
		if def == nil {
			return 0, errs.Malformedf("%s is required", name)
		}
		return *def, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errs.Malformedf("%s must be int64", name)
	}
	return v, nil
}

func queryInt(q url.Values, name string, def int64, lo, hi int64) (int, error) {
	v, err := queryInt64(q, name, &def)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, errs.Malformedf("%s must be between %d and %d", name, lo, hi)
	}
	return int(v), nil
}
