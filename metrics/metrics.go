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

// Package metrics 提供搜尋的 prometheus 指標。每個 Metrics 持有自己的 Registry；
// nil *Metrics 的所有方法皆為 no-op，呼叫端不必判斷。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg       *prometheus.Registry
	scanned   *prometheus.CounterVec
	kept      *prometheus.CounterVec
	searches  *prometheus.CounterVec
	shardTime *prometheus.HistogramVec
	poolEvent *prometheus.CounterVec
}

// New 建立獨立 Registry 的指標組，並附上 Go runtime 指標。
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		scanned: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seedlab",
			Name:      "candidates_scanned_total",
			Help:      "Candidate seeds evaluated.",
		}, []string{"mode"}),
		kept: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seedlab",
			Name:      "seeds_kept_total",
			Help:      "Candidate seeds that matched the evidence.",
		}, []string{"mode"}),
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seedlab",
			Name:      "searches_total",
			Help:      "Searches started, by mode and outcome.",
		}, []string{"mode", "outcome"}),
		shardTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "seedlab",
			Name:      "shard_duration_seconds",
			Help:      "Wall time per search shard.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
		}, []string{"mode"}),
		poolEvent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seedlab",
			Name:      "evaluator_pool_events_total",
			Help:      "Evaluator pool panics and rebuilds.",
		}, []string{"event"}),
	}
}

func (m *Metrics) Scanned(mode string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.scanned.WithLabelValues(mode).Add(float64(n))
}

func (m *Metrics) Kept(mode string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.kept.WithLabelValues(mode).Add(float64(n))
}

// Search 記錄一次搜尋的結果（ok / canceled / error）。
func (m *Metrics) Search(mode, outcome string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) Shard(mode string, d time.Duration) {
	if m == nil {
		return
	}
	m.shardTime.WithLabelValues(mode).Observe(d.Seconds())
}

// PoolEvent 記錄 evaluator pool 事件（panic / rebuild）。
func (m *Metrics) PoolEvent(event string) {
	if m == nil {
		return
	}
	m.poolEvent.WithLabelValues(event).Inc()
}

// Registry 回傳底層 Registry，供測試或額外註冊使用。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler 回傳 /metrics 的 http.Handler。
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
