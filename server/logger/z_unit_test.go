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

package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/server/logger"
)

func TestParseMode(t *testing.T) {
	for s, want := range map[string]logger.LogMode{"dev": logger.ModeDev, "PROD": logger.ModeProd, " silence ": logger.ModeSilence} {
		got, err := logger.ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := logger.ParseMode("verbose")
	assert.True(t, errs.IsKind(err, errs.KindMalformed))
	assert.Equal(t, "prod", logger.ModeProd.String())
}

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, nil)
	ah := logger.NewAsyncHandler(base, 64)
	log := slog.New(ah).With("run", "r1")
	for i := 0; i < 10; i++ {
		log.Info("shard done", "shard", i)
	}
	ah.Close()
	assert.Equal(t, 10, bytes.Count(buf.Bytes(), []byte(`"run":"r1"`)))

	// 關閉後丟棄
	log.Info("late")
	assert.Equal(t, uint64(1), ah.Dropped())
	ah.Close()
}

func TestWriterLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriterLogger(logger.ModeProd, &buf)
	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
