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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/evidence"
	"github.com/zintix-labs/seedlab/sdk/seed"
	"github.com/zintix-labs/seedlab/sdk/slime"
	"github.com/zintix-labs/seedlab/seedfile"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func genEvidence(t *testing.T, dir string, world int64) string {
	t.Helper()
	path := filepath.Join(dir, "ev.yaml")
	_, err := run(t, "generate", strconv.FormatInt(world, 10),
		"--slime", "10", "--negative", "10", "--biomes", "0", "-o", path)
	require.NoError(t, err)
	return path
}

func TestGenerateAndFind(t *testing.T) {
	dir := t.TempDir()
	evPath := genEvidence(t, dir, 1234)
	ev, err := evidence.Load(evPath)
	require.NoError(t, err)
	assert.Len(t, ev.SlimeChunks, 10)
	assert.Len(t, ev.NegativeSlimeChunks, 10)

	seedsPath := filepath.Join(dir, "seeds.json.zst")
	out, err := run(t, "find", evPath, "--lo", "0", "--hi", "4096", "--workers", "2",
		"--shard-size", "1024", "-o", seedsPath, "--report", "json")
	require.NoError(t, err)

	var rep struct {
		Mode    string
		Scanned uint64
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep), out)
	assert.Equal(t, "slime/range", rep.Mode)
	assert.Equal(t, uint64(4096), rep.Scanned)

	seeds, err := seedfile.Read(seedsPath)
	require.NoError(t, err)
	assert.Contains(t, seeds, int64(1234))
}

func TestFindFromCandidatesWithCheckpoint(t *testing.T) {
	dir := t.TempDir()
	evPath := genEvidence(t, dir, 777)
	cands := filepath.Join(dir, "cands.json")
	require.NoError(t, seedfile.Write(cands, []int64{1, 2, 777, 778}))

	args := []string{"find", evPath, "-c", cands, "--checkpoint", filepath.Join(dir, "ckpt")}
	out, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "search slime/candidates")
	assert.Contains(t, out, "777")

	// 第二次由 checkpoint 取回結果
	out, err = run(t, append(args, "--report", "yaml")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Resumed: 1")
}

func TestFindNeedsSpace(t *testing.T) {
	dir := t.TempDir()
	evPath := genEvidence(t, dir, 5)
	_, err := run(t, "find", evPath)
	assert.True(t, errs.IsKind(err, errs.KindMalformed))

	_, err = run(t, "find", evPath, "--lo", "0", "--hi", "10", "--report", "xml")
	assert.True(t, errs.IsKind(err, errs.KindMalformed))
}

func TestRiversCandidates(t *testing.T) {
	dir := t.TempDir()
	w := seed.FirstNextLong(99)
	evPath := filepath.Join(dir, "ev.json")
	_, err := run(t, "generate", "--seed="+strconv.FormatInt(w, 10), "--slime", "0", "--negative", "0",
		"--biomes", "12", "--biome-radius", "100", "--sampler", "3", "--next-long", "-o", evPath)
	require.NoError(t, err)

	cands := filepath.Join(dir, "c.json")
	s48 := seed.Mask48(w)
	require.NoError(t, seedfile.Write(cands, []int64{s48, s48 + 1}))
	out, err := run(t, "rivers", evPath, "-c", cands, "--report", "json")
	require.NoError(t, err)
	var rep struct{ Seeds []int64 }
	require.NoError(t, json.Unmarshal([]byte(out), &rep), out)
	assert.Contains(t, rep.Seeds, w)

	_, err = run(t, "rivers", evPath, "--all")
	assert.True(t, errs.IsKind(err, errs.KindMalformed))
}

func TestExtend48(t *testing.T) {
	w := seed.FirstNextLong(42)
	out, err := run(t, "extend48", strconv.FormatInt(seed.Mask48(w), 10))
	require.NoError(t, err)
	var got []int64
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Contains(t, got, w)

	_, err = run(t, "extend48", "x")
	assert.Error(t, err)
}

func TestPopulationAndSpawners(t *testing.T) {
	dir := t.TempDir()
	w := int64(987654321)
	var sb strings.Builder
	for _, c := range [][2]int64{{0, 0}, {1, 3}, {-7, 2}} {
		sb.WriteString("- {seed: " + strconv.FormatInt(seed.PopulationSeed(w, c[0], c[1]), 10) +
			", x: " + strconv.FormatInt(c[0], 10) + ", z: " + strconv.FormatInt(c[1], 10) + "}\n")
	}
	tp := filepath.Join(dir, "triples.yaml")
	require.NoError(t, os.WriteFile(tp, []byte(sb.String()), 0o644))
	out, err := run(t, "population", tp)
	require.NoError(t, err)
	var got []int64
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Contains(t, got, seed.Mask48(w))

	sp := filepath.Join(dir, "spawners.yaml")
	require.NoError(t, os.WriteFile(sp, []byte(`
- {pos: {x: 0, y: 30, z: 0}, label: a}
- {pos: {x: 10, y: 30, z: 10}, label: b}
- {pos: {x: 5000, y: 30, z: 5000}, label: lonely}
`), 0o644))
	out, err = run(t, "spawners", sp)
	require.NoError(t, err)
	assert.Contains(t, out, "label: a")
	assert.Contains(t, out, "label: b")
	assert.NotContains(t, out, "lonely")
}

func TestMap(t *testing.T) {
	out, err := run(t, "map", "42", "--width", "4", "--height", "2", "--scale", "4")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Len(t, lines[0], 16)

	_, err = run(t, "map", "42", "--scale", "2")
	assert.Error(t, err)

	// 8x8 方塊以多數決折回 1:4，至少有 2x2 格
	out, err = run(t, "map", "42", "--width", "8", "--height", "8", "--reverse")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines[0], 8)

	_, err = run(t, "map", "42", "--scale", "4", "--reverse")
	assert.True(t, errs.IsKind(err, errs.KindMalformed))
}

func TestRootFlags(t *testing.T) {
	_, err := run(t, "extend48", "1", "--log", "loud")
	assert.True(t, errs.IsKind(err, errs.KindMalformed))

	_, err = run(t, "extend48", "1", "--pprof", "trace")
	assert.True(t, errs.IsKind(err, errs.KindMalformed))

	dir := t.TempDir()
	evPath := genEvidence(t, dir, 9)
	_, err = run(t, "find", evPath, "--lo", "0", "--hi", "64", "--pprof", "heap", "--pprof-dir", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "heap.pprof"))
}

func TestNegativeSeedArguments(t *testing.T) {
	w := int64(-5119754439980850796)
	ws := strconv.FormatInt(w, 10)
	dir := t.TempDir()

	evPath := filepath.Join(dir, "ev.yaml")
	_, err := run(t, "generate", "--seed", ws, "--slime", "3", "--negative", "0", "--biomes", "0", "-o", evPath)
	require.NoError(t, err)
	ev, err := evidence.Load(evPath)
	require.NoError(t, err)
	for _, c := range ev.SlimeChunks {
		assert.True(t, slime.IsSlimeChunk(w, c.X, c.Z))
	}

	byFlag, err := run(t, "map", "--seed="+ws, "--width", "4", "--height", "2")
	require.NoError(t, err)
	byDash, err := run(t, "map", "--width", "4", "--height", "2", "--", ws)
	require.NoError(t, err)
	assert.Equal(t, byFlag, byDash)

	_, err = run(t, "map", "42", "--seed=1")
	assert.True(t, errs.IsKind(err, errs.KindMalformed))
	_, err = run(t, "generate")
	assert.True(t, errs.IsKind(err, errs.KindMalformed))
}
