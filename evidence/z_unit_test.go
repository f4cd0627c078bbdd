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

package evidence

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/layer"
	"github.com/zintix-labs/seedlab/sdk/slime"
)

func sample() *Evidence {
	ev := &Evidence{
		Version:             "1.7",
		SlimeChunks:         []slime.Chunk{{X: 0, Z: 0}, {X: -3, Z: 12}},
		NegativeSlimeChunks: []slime.Chunk{{X: 1, Z: 1}},
		Options: Options{
			ErrorMarginSlime:    1,
			ErrorMarginSlimeNeg: 2,
			ErrorMarginBiome:    3,
			NextLong:            true,
		},
	}
	ev.AddBiome(layer.River, 100, -20)
	ev.AddBiome(layer.River, 101, -20)
	ev.AddBiome(layer.Desert, -5000, 7)
	return ev
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatYAML, FormatJSON} {
		ev := sample()
		var buf bytes.Buffer
		require.NoError(t, ev.Encode(&buf, f))
		got, err := Decode(&buf, f)
		require.NoError(t, err)
		assert.Equal(t, ev, got)
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ev.yaml", "ev.json"} {
		path := filepath.Join(dir, name)
		ev := sample()
		require.NoError(t, ev.Save(path))
		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ev, got)
	}
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestBiomeSamplesSorted(t *testing.T) {
	s := sample().BiomeSamples()
	require.Len(t, s, 3)
	assert.Equal(t, Sample{X: 100, Z: -20, Biome: layer.River}, s[0])
	assert.Equal(t, Sample{X: 101, Z: -20, Biome: layer.River}, s[1])
	assert.Equal(t, Sample{X: -5000, Z: 7, Biome: layer.Desert}, s[2])
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Evidence){
		"no version":   func(e *Evidence) { e.Version = "" },
		"bad version":  func(e *Evidence) { e.Version = "beta" },
		"neg margin":   func(e *Evidence) { e.Options.ErrorMarginSlime = -1 },
		"unknown id":   func(e *Evidence) { e.AddBiome(250, 0, 0) },
		"empty biome":  func(e *Evidence) { e.Biomes[layer.Plains] = nil },
		"contradicted": func(e *Evidence) { e.NegativeSlimeChunks = append(e.NegativeSlimeChunks, e.SlimeChunks[0]) },
		"far x":        func(e *Evidence) { e.AddBiome(layer.Plains, 1<<40, 0) },
		"far z":        func(e *Evidence) { e.AddBiome(layer.Ocean, 0, -WorldBorder-1) },
		"nothing": func(e *Evidence) {
			e.Biomes, e.SlimeChunks, e.NegativeSlimeChunks = nil, nil, nil
		},
	}
	for name, mut := range cases {
		ev := sample()
		mut(ev)
		err := ev.Validate()
		require.Error(t, err, name)
		assert.True(t, errs.IsKind(err, errs.KindMalformed), name)
	}
}

func TestValidateWorldBorder(t *testing.T) {
	ev := sample()
	ev.AddBiome(layer.Ocean, WorldBorder, -WorldBorder)
	ev.AddBiome(layer.Ocean, -WorldBorder, WorldBorder)
	require.NoError(t, ev.Validate())

	ev.AddBiome(layer.Ocean, WorldBorder+1, 0)
	err := ev.Validate()
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindMalformed))
	assert.Contains(t, err.Error(), "world border")
}

func TestDecodeStrict(t *testing.T) {
	_, err := Decode(strings.NewReader("version: \"1.7\"\nslime_chunks: [{x: 1, z: 2}]\nbogus: 1\n"), FormatYAML)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindMalformed))

	ev, err := Decode(strings.NewReader(`{"version":"1.13.2","slime_chunks":[{"x":1,"z":2}],"biomes":{"7":[[1,2]]}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, [][2]int64{{1, 2}}, ev.Biomes[layer.River])
	assert.Equal(t, FormatJSON, FormatOf("a/b.JSON"))
	assert.Equal(t, FormatYAML, FormatOf("a/b.yml"))
}
