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

// ops 是開發用的任務腳本：go run scripts/ops.go [task]
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
)

// ANSI 顏色代碼 (Windows 10+ 的 cmd/powershell 皆支援)
const (
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorReset  = "\033[0m"
)

func printColor(color, msg string) { fmt.Printf("%s%s%s\n", color, msg, colorReset) }

// task 由數個依序執行的指令組成；filter 非 nil 時逐行過濾輸出。
type task struct {
	desc   string
	steps  [][]string
	filter func(line string) (string, bool)
}

// okFail 只留下 ok / FAIL 與建置錯誤
func okFail(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "ok"):
		return colorGreen + line + colorReset, true
	case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "build failed"), strings.Contains(line, "setup failed"):
		return colorRed + line + colorReset, true
	}
	return "", false
}

func noEmptyPkgs(line string) (string, bool) {
	if strings.Contains(line, "[no test files]") {
		return "", false
	}
	if l, ok := okFail(line); ok {
		return l, true
	}
	return line, true
}

var tasks = map[string]task{
	"test": {
		desc:   "go test ./... -cover, ok/FAIL lines only",
		steps:  [][]string{{"go", "clean", "-testcache"}, {"go", "test", "./...", "-cover", "-count=1"}},
		filter: okFail,
	},
	"test-detail": {
		desc:   "verbose tests without empty packages",
		steps:  [][]string{{"go", "clean", "-testcache"}, {"go", "test", "./...", "-v", "-count=1"}},
		filter: noEmptyPkgs,
	},
	"race": {
		desc:  "search and server packages under the race detector",
		steps: [][]string{{"go", "test", "-race", "-count=1", ".", "./checkpoint/...", "./server/..."}},
	},
	// 產生證據後跑一次 cpu profile，輸出在 build/profiling
	"profile": {
		desc: "cpu profile of a 2^24 slime range search",
		steps: [][]string{
			{"go", "run", "./cmd/seedlab", "generate", "1234", "--biomes", "0", "-o", "build/profiling/ev.yaml"},
			{"go", "run", "./cmd/seedlab", "find", "build/profiling/ev.yaml", "--lo", "0", "--hi", "16777216", "--pprof", "cpu", "--report", "yaml"},
		},
	},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	t, ok := tasks[os.Args[1]]
	if !ok {
		printColor(colorYellow, "Unknown task: "+os.Args[1])
		usage()
		os.Exit(1)
	}
	printColor(colorGreen, "running "+os.Args[1])
	for _, s := range t.steps {
		if err := runStep(s, t.filter); err != nil {
			printColor(colorRed, fmt.Sprintf("\n%s failed: %v", strings.Join(s, " "), err))
			os.Exit(1)
		}
	}
}

func usage() {
	fmt.Println("Usage: go run scripts/ops.go [task]")
	names := make([]string, 0, len(tasks))
	for n := range tasks {
		names = append(names, n)
	}
	slices.Sort(names)
	for _, n := range names {
		fmt.Printf("  %-12s %s\n", n, tasks[n].desc)
	}
}

func runStep(args []string, filter func(string) (string, bool)) error {
	cmd := exec.Command(args[0], args[1:]...)
	if filter == nil {
		cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
		return cmd.Run()
	}
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	// 編譯錯誤在 stderr，合併後一起過濾
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	sc := bufio.NewScanner(pipe)
	for sc.Scan() {
		if l, ok := filter(sc.Text()); ok {
			fmt.Println(l)
		}
	}
	return cmd.Wait()
}
