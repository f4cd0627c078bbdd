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

// Package perf 以 runtime/pprof 包住一段 CLI 執行。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/seedlab/errs"
)

// DefaultDir 為 pprof 檔案寫入路徑
const DefaultDir = "build/profiling"

// Mode 為 profiling 種類
type Mode string

const (
	ModeNone   Mode = ""
	ModeCPU    Mode = "cpu"
	ModeHeap   Mode = "heap"
	ModeAllocs Mode = "allocs"
)

// ParseMode 解析 --pprof 旗標。
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeNone, ModeCPU, ModeHeap, ModeAllocs:
		return m, nil
	}
	return ModeNone, errs.Malformedf("unknown pprof mode %q (want cpu, heap or allocs)", s)
}

// Run 依 mode 執行 exe 並把 profile 寫到 dir；exe 的錯誤原樣回傳。
//
// Usage like:
//
//	seedlab find ev.yaml --lo 0 --hi 1e9 --pprof cpu
//	go tool pprof build/profiling/cpu.pprof
func Run(dir string, mode Mode, exe func() error) error {
	if mode == ModeNone {
		return exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(err, "create profiling dir")
	}
	switch mode {
	case ModeCPU:
		return cpu(dir, exe)
	case ModeHeap:
		// 盡量讓快照貼近最新狀態
		return after(dir, "heap", exe, func(f *os.File) error {
			runtime.GC()
			return pprof.WriteHeapProfile(f)
		})
	case ModeAllocs:
		return after(dir, "allocs", exe, func(f *os.File) error {
			return pprof.Lookup("allocs").WriteTo(f, 0)
		})
	}
	return errs.Malformedf("unknown pprof mode %q", mode)
}

// cpu 可做性能分析，也可以拿來做構建時給 pgo 的 blueprint。
func cpu(dir string, exe func() error) error {
	f, err := os.Create(filepath.Join(dir, "cpu.pprof"))
	if err != nil {
		return errs.Wrap(err, "create cpu.pprof")
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// after 在 exe() 結束後寫出一次快照；exe 失敗時仍會寫出。
func after(dir, name string, exe func() error, write func(*os.File) error) error {
	runErr := exe()
	f, err := os.Create(filepath.Join(dir, name+".pprof"))
	if err != nil {
		return errs.Wrap(err, "create "+name+".pprof")
	}
	defer f.Close()
	if err := write(f); err != nil {
		return errs.Wrap(err, "write "+name+" profile")
	}
	return runErr
}
