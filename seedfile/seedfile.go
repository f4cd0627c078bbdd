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

// Package seedfile 讀寫 seed 列表檔：JSON 整數陣列，順序原樣保存。
//
// 副檔名為 .zst 時內容以 zstd 壓縮。寫入一律整檔替換（暫存檔 + rename），
// 讀者不會看到寫到一半的檔案。
package seedfile

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/seedlab/errs"
)

const zstdExt = ".zst"

func compressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), zstdExt)
}

// Read 讀取 seed 列表。
func Read(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, "open seed file")
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if compressed(path) {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errs.Wrap(err, "open zstd stream")
		}
		defer zr.Close()
		r = zr
	}
	return Decode(r)
}

// Decode 解析 JSON 整數陣列。
func Decode(r io.Reader) ([]int64, error) {
	var seeds []int64
	if err := json.NewDecoder(r).Decode(&seeds); err != nil {
		return nil, errs.MalformedWrap(err, "seed list must be a JSON array of integers")
	}
	if seeds == nil {
		seeds = []int64{}
	}
	return seeds, nil
}

// Encode 以單行 JSON 陣列輸出。
func Encode(w io.Writer, seeds []int64) error {
	if seeds == nil {
		seeds = []int64{}
	}
	if err := json.NewEncoder(w).Encode(seeds); err != nil {
		return errs.Wrap(err, "encode seed list")
	}
	return nil
}

// Write 以原子替換的方式寫入 seed 列表。
func Write(path string, seeds []int64) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".seeds-*.tmp")
	if err != nil {
		return errs.Wrap(err, "create temp seed file")
	}
	tmpPath := tmp.Name()
	done := false
	defer func() {
		if !done {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if compressed(path) {
		zw, zerr := zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zerr != nil {
			return errs.Wrap(zerr, "open zstd writer")
		}
		if err := Encode(zw, seeds); err != nil {
			zw.Close()
			return err
		}
		if err := zw.Close(); err != nil {
			return errs.Wrap(err, "flush zstd stream")
		}
	} else if err := Encode(bw, seeds); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return errs.Wrap(err, "flush seed file")
	}
	if err := tmp.Sync(); err != nil {
		return errs.Wrap(err, "sync seed file")
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(err, "close seed file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		done = true
		return errs.Wrap(err, "replace seed file")
	}
	done = true
	return nil
}
