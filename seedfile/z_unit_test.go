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

package seedfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/seedlab/errs"
)

func TestWriteReadKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	seeds := []int64{5, -1, 1 << 62, 0, 5, -9223372036854775808}
	for _, name := range []string{"s.json", "s.json.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Write(path, seeds))
		got, err := Read(path)
		require.NoError(t, err)
		assert.Equal(t, seeds, got)
	}
}

func TestWriteReplacesWholeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.json")
	require.NoError(t, Write(path, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}))
	require.NoError(t, Write(path, []int64{42}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[42]\n", string(raw))

	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, ents, 1, "temp files must not be left behind")
}

func TestEmptyAndInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	require.NoError(t, Write(path, nil))
	got, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	_, err = Decode(strings.NewReader(`{"a":1}`))
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindMalformed))

	_, err = Read(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
