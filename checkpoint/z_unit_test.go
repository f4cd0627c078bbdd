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

package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkDoneResults(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	done, err := s.Done("r1", 3)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, s.Mark("r1", 3, []int64{9, -4}))
	require.NoError(t, s.Mark("r1", 12, nil))
	require.NoError(t, s.Mark("r1", 1, []int64{9, 100}))
	require.NoError(t, s.Mark("r2", 3, []int64{777}))

	done, err = s.Done("r1", 3)
	require.NoError(t, err)
	assert.True(t, done)

	shards, err := s.Shards("r1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 12}, shards)

	res, err := s.Results("r1")
	require.NoError(t, err)
	assert.Equal(t, []int64{-4, 9, 100}, res)

	require.NoError(t, s.Clear("r1"))
	shards, err = s.Shards("r1")
	require.NoError(t, err)
	assert.Empty(t, shards)

	res, err = s.Results("r2")
	require.NoError(t, err)
	assert.Equal(t, []int64{777}, res)
}

func TestPersistentReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.Mark("run", 0, []int64{1234}))
	require.NoError(t, s.Close())

	s, err = Open(dir, nil)
	require.NoError(t, err)
	defer s.Close()
	done, err := s.Done("run", 0)
	require.NoError(t, err)
	assert.True(t, done)
	res, err := s.Results("run")
	require.NoError(t, err)
	assert.Equal(t, []int64{1234}, res)

	_, err = Open("", nil)
	assert.Error(t, err)
}
