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

package stats

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zintix-labs/seedlab/errs"
)

// SearchReportRender 把報表寫到 w。
type SearchReportRender interface {
	Write(w io.Writer, r *SearchReport) error
}

type JsonSearchReportRender struct {
	Indent bool
}

func (jr *JsonSearchReportRender) Write(w io.Writer, r *SearchReport) error {
	enc := json.NewEncoder(w)
	if jr.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(r)
}

// YAMLSearchReportRender 的純量序列（Seeds、信賴區間）以 flow style 輸出。
type YAMLSearchReportRender struct{}

func (yr *YAMLSearchReportRender) Write(w io.Writer, r *SearchReport) error {
	var node yaml.Node
	if err := node.Encode(r); err != nil {
		return err
	}
	flowScalarSeqs(&node)
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

// TableSearchReportRender 即 StdOut。
type TableSearchReportRender struct{}

func (tr *TableSearchReportRender) Write(w io.Writer, r *SearchReport) error {
	r.StdOut(w)
	return nil
}

// RenderFor 依 --report 的值挑選輸出格式。
func RenderFor(format string) (SearchReportRender, error) {
	switch format {
	case "", "table":
		return &TableSearchReportRender{}, nil
	case "json":
		return &JsonSearchReportRender{}, nil
	case "yaml":
		return &YAMLSearchReportRender{}, nil
	}
	return nil, errs.Malformedf("unknown report format %q", format)
}

// flowScalarSeqs : 只含純量的 sequence 改為 [a, b]，巢狀的保持 block。
func flowScalarSeqs(n *yaml.Node) {
	if n == nil {
		return
	}
	scalars := true
	for _, c := range n.Content {
		flowScalarSeqs(c)
		if c.Kind != yaml.ScalarNode {
			scalars = false
		}
	}
	if n.Kind == yaml.SequenceNode && scalars {
		n.Style = yaml.FlowStyle
	}
}
