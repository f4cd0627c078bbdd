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

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/seedlab"
	v1 "github.com/zintix-labs/seedlab/server/api/v1"
	"github.com/zintix-labs/seedlab/server/netsvr"
	"github.com/zintix-labs/seedlab/server/netsvr/middleware"
	"github.com/zintix-labs/seedlab/server/svrcfg"
)

// RegisterRoutes 註冊；sCfg 必須已通過 Valid。
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg, lab *seedlab.Lab) error {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	registerIndex(svr)                // 2. 註冊主頁
	registerMetrics(svr, lab)         // 3. prometheus
	return registerV1API(svr, sCfg, lab)
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

var endpoints = []string{
	"GET  /v1/extend48",
	"GET  /v1/slime",
	"GET  /v1/biomes",
	"POST /v1/generate",
	"POST /v1/find",
	"POST /v1/rivers",
	"POST /v1/population",
	"POST /v1/spawners",
	"GET  /metrics",
}

// 註冊主頁
func registerIndex(svr netsvr.NetSvr) {
	svr.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service":   "seedlab",
			"version":   seedlab.Version,
			"endpoints": endpoints,
		})
	})
}

func registerMetrics(svr netsvr.NetSvr, lab *seedlab.Lab) {
	if m := lab.Metrics(); m != nil {
		svr.Handle("/metrics", m.Handler())
	}
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg, lab *seedlab.Lab) error {
	h, err := v1.NewHandler(lab, sCfg)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/extend48", h.Extend48)
		vOne.Get("/slime", h.Slime)
		vOne.Get("/biomes", h.Biomes)

		vOne.Post("/generate", h.Generate)
		vOne.Post("/find", h.Find)
		vOne.Post("/rivers", h.Rivers)
		vOne.Post("/population", h.Population)
		vOne.Post("/spawners", h.Spawners)
	})
	return nil
}
