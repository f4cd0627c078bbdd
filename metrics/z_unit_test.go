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

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	m := New()
	m.Scanned("slime", 100)
	m.Scanned("slime", 28)
	m.Kept("slime", 1)
	m.Search("slime", "ok")
	m.Shard("slime", 20*time.Millisecond)
	m.PoolEvent("panic")

	assert.Equal(t, 128.0, testutil.ToFloat64(m.scanned.WithLabelValues("slime")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.kept.WithLabelValues("slime")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), "seedlab_candidates_scanned_total"))
	assert.True(t, strings.Contains(string(body), `seedlab_evaluator_pool_events_total{event="panic"} 1`))
}

func TestNilIsNoop(t *testing.T) {
	var m *Metrics
	m.Scanned("x", 1)
	m.Kept("x", 1)
	m.Search("x", "ok")
	m.Shard("x", time.Second)
	m.PoolEvent("rebuild")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
