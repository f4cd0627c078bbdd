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
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/seedlab/errs"
	"gopkg.in/yaml.v3"
)

// Format 為序列化格式。
type Format uint8

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatOf 依副檔名判斷格式；非 .json 一律視為 YAML。
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load 讀取並驗證檔案。
func Load(path string) (*Evidence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, "open evidence file")
	}
	defer f.Close()
	return Decode(f, FormatOf(path))
}

// Decode 解析並驗證。YAML 以嚴格模式解析，未知欄位視為錯誤。
func Decode(r io.Reader, f Format) (*Evidence, error) {
	ev := &Evidence{}
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(ev); err != nil {
			return nil, errs.MalformedWrap(err, "can not unmarshal evidence json")
		}
	default:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(ev); err != nil {
			return nil, errs.MalformedWrap(err, "can not unmarshal evidence yaml")
		}
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}

// Encode 輸出為指定格式。
func (e *Evidence) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(e); err != nil {
			return errs.Wrap(err, "encode evidence json")
		}
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(e); err != nil {
			return errs.Wrap(err, "encode evidence yaml")
		}
		if err := enc.Close(); err != nil {
			return errs.Wrap(err, "encode evidence yaml")
		}
	}
	return nil
}

// Save 寫入檔案（格式依副檔名）。
func (e *Evidence) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create evidence file")
	}
	if err := e.Encode(f, FormatOf(path)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(err, "close evidence file")
	}
	return nil
}
