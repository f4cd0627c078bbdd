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
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/server/logger"
	"github.com/zintix-labs/seedlab/server/svrcfg"
)

func TestDecodeStrict(t *testing.T) {
	type body struct {
		A int `json:"a"`
	}
	cases := map[string]bool{
		`{"a":1}`:         true,
		`{"a":1} {"a":2}`: false,
		`{"b":1}`:         false,
		`{"a":`:           false,
	}
	for in, ok := range cases {
		req := httptest.NewRequest("POST", "/", strings.NewReader(in))
		var b body
		err := decode(httptest.NewRecorder(), req, &b)
		if ok {
			require.NoError(t, err, in)
			assert.Equal(t, 1, b.A)
		} else {
			assert.True(t, errs.IsKind(err, errs.KindMalformed), in)
		}
	}
}

func TestQueryInt(t *testing.T) {
	q := url.Values{"w": {"300"}, "x": {"-5"}, "bad": {"1.5"}}
	_, err := queryInt(q, "w", 16, 1, maxSide)
	assert.True(t, errs.IsKind(err, errs.KindMalformed))

	x, err := queryInt(q, "x", 0, -10, 10)
	require.NoError(t, err)
	assert.Equal(t, -5, x)

	h, err := queryInt(q, "h", 16, 1, maxSide)
	require.NoError(t, err)
	assert.Equal(t, 16, h)

	_, err = queryInt64(q, "bad", nil)
	assert.Error(t, err)
	_, err = queryInt64(q, "missing", nil)
	assert.Error(t, err)
}

func TestNewHandlerRequiresDeps(t *testing.T) {
	_, err := NewHandler(nil, nil)
	assert.Error(t, err)
}

func TestSharedSearchRunsOnce(t *testing.T) {
	cfg := &svrcfg.SvrCfg{Log: logger.NewWriterLogger(logger.ModeSilence, io.Discard)}
	require.NoError(t, cfg.Valid())
	h, err := NewHandler(seedlab.New(), cfg)
	require.NoError(t, err)

	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})
	fn := func(context.Context) (*seedlab.Result, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return &seedlab.Result{Seeds: []int64{7}}, nil
	}

	var wg sync.WaitGroup
	results := make([]*seedlab.Result, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = h.shared(context.Background(), "find", map[string]int{"a": 1}, fn)
	}()
	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = h.shared(context.Background(), "find", map[string]int{"a": 1}, fn)
	}()
	// 讓第二個呼叫加入進行中的搜尋後才放行
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NotNil(t, results[0])
	require.NotNil(t, results[1])
	assert.Equal(t, []int64{7}, results[1].Seeds)
	assert.Equal(t, int32(1), calls.Load())
}
