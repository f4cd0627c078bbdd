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

package app

import (
	"context"
	"sync"
)

// Component 是由 App 管理啟停的元件。
//   - Run 阻塞直到元件停止；正常停止回傳 nil，異常回傳錯誤並觸發整體關閉。
//   - Shutdown 要求元件停止，需在 ctx 期限內返回，可能被呼叫多次。
//
// seedlab 中的 Component 為 HTTP server 與 checkpoint store。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// Closer 把只需要在關閉時釋放的資源（例如 badger checkpoint）包成 Component。
// Run 一直阻塞到 Shutdown；close 只執行一次。
type Closer struct {
	name  string
	close func() error
	done  chan struct{}
	once  sync.Once
	err   error
}

// NewCloser 建立 Closer；close 為 nil 時 Shutdown 不做事。
func NewCloser(name string, close func() error) *Closer {
	return &Closer{name: name, close: close, done: make(chan struct{})}
}

func (c *Closer) Name() string { return c.name }

func (c *Closer) Run() error {
	<-c.done
	return nil
}

// Shutdown 關閉資源並喚醒 Run；重複呼叫回傳第一次的結果。
func (c *Closer) Shutdown(ctx context.Context) error {
	c.once.Do(func() {
		defer close(c.done)
		if c.close == nil {
			return
		}
		ch := make(chan error, 1)
		go func() { ch <- c.close() }()
		select {
		case c.err = <-ch:
		case <-ctx.Done():
			c.err = ctx.Err()
		}
	})
	return c.err
}
