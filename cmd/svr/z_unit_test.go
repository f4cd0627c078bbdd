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

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/seedlab/server/svrcfg"
)

func TestLoadConfigFromFlags(t *testing.T) {
	cfg, err := loadConfigFromFlags([]string{"-log", "silence", "-addr", ":9000", "-workers", "3", "-timeout", "30s"})
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.SearchTimeout)
	assert.Equal(t, svrcfg.DefaultMaxSpan, cfg.MaxSpan)
	require.NoError(t, cfg.Valid())
}

func TestLoadConfigRejects(t *testing.T) {
	_, err := loadConfigFromFlags([]string{"-log", "verbose"})
	assert.Error(t, err)
	_, err = loadConfigFromFlags([]string{"-timeout", "soon"})
	assert.Error(t, err)
}
