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
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo" yaml:"Lo"`
	Hi float64 `json:"Hi" yaml:"Hi"`
}

// SearchReport 一次搜尋的統計報告
type SearchReport struct {
	RunID       string  `json:"RunID"       yaml:"RunID"`
	Mode        string  `json:"Mode"        yaml:"Mode"`
	Fingerprint string  `json:"Fingerprint" yaml:"Fingerprint"`
	Space       float64 `json:"Space"       yaml:"Space"`   // 搜尋空間大小（預篩前）
	Scanned     uint64  `json:"Scanned"     yaml:"Scanned"` // 實際評估的候選數
	Shards      int     `json:"Shards"      yaml:"Shards"`
	Resumed     int     `json:"Resumed"     yaml:"Resumed"` // 由 checkpoint 略過的 shard
	Kept        int     `json:"Kept"        yaml:"Kept"`
	Seeds       []int64 `json:"Seeds"       yaml:"Seeds"`
	ElapsedSec  float64 `json:"ElapsedSec"  yaml:"ElapsedSec"`
	Rate        float64 `json:"Rate"        yaml:"Rate"` // candidates/sec

	// PassProb 為隨機 seed 通過所有證據的機率；< 0 表示此模式沒有模型
	PassProb      float64 `json:"PassProb"      yaml:"PassProb"`
	ExpectedFalse float64 `json:"ExpectedFalse" yaml:"ExpectedFalse"`
	MatchRate     float64 `json:"MatchRate"     yaml:"MatchRate"`
	MatchRateCI   CI      `json:"MatchRateCI"   yaml:"MatchRateCI"`

	isDone bool
}

// Done 依計數填入衍生欄位；重複呼叫無作用。
func (r *SearchReport) Done(elapsed time.Duration) {
	if r.isDone {
		return
	}
	r.Kept = len(r.Seeds)
	r.ElapsedSec = elapsed.Seconds()
	if r.ElapsedSec > 0 {
		r.Rate = float64(r.Scanned) / r.ElapsedSec
	}
	if r.PassProb >= 0 {
		r.ExpectedFalse = r.PassProb * r.Space
	} else {
		r.ExpectedFalse = -1
	}
	r.MatchRate, r.MatchRateCI = proportionCICP(r.Kept, int(min(r.Scanned, 1<<53)), 0.95)
	r.isDone = true
}

func (r *SearchReport) WriteWith(w io.Writer, rep SearchReportRender) error {
	return rep.Write(w, r)
}

// StdOut 以表格輸出到 w。
func (r *SearchReport) StdOut(w io.Writer) {
	keys, msg := r.fmtBasic()
	fmt.Fprintln(w, fmtTable("search "+r.Mode, keys, msg))
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(sec float64) string {
	d := time.Duration(sec * float64(time.Second))
	if sec < 60.0 {
		return fmt.Sprintf("%.2f seconds", sec)
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%dh:%dm:%ds", h, m, s)
}

func (r *SearchReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	msg := map[string]string{
		"Run ID":     r.RunID,
		"Mode":       r.Mode,
		"Space":      p.Sprintf("%.0f", r.Space),
		"Scanned":    p.Sprintf("%d", r.Scanned),
		"Shards":     p.Sprintf("%d (resumed %d)", r.Shards, r.Resumed),
		"Kept":       p.Sprintf("%d", r.Kept),
		"Used":       formatDuration(r.ElapsedSec),
		"Rate":       p.Sprintf("%.0f seeds/sec", r.Rate),
		"Match Rate": p.Sprintf("%.3g [%.3g, %.3g]", r.MatchRate, r.MatchRateCI.Lo, r.MatchRateCI.Hi),
	}
	keys := []string{"Run ID", "Mode", "Space", "Scanned", "Shards", "Kept", "Used", "Rate", "Match Rate"}
	if r.PassProb >= 0 {
		msg["Expected False"] = p.Sprintf("%.4g", r.ExpectedFalse)
		keys = append(keys, "Expected False")
	}
	return keys, msg
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	left := max((totalInner-titleW)/2, 0)
	right := max(totalInner-titleW-left, 0)

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
