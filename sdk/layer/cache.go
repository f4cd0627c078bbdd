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

package layer

import (
	"sync"

	"github.com/zintix-labs/seedlab/errs"
)

type cacheKey struct {
	world int64
	node  int
	area  Area
}

// Cache 以 (seed, area, node) 為 key 保存 stage 輸出，供同一次搜尋內重用，不做淘汰。
// 回傳的 Map 與 Cache 共用底層資料，呼叫端不可修改。
type Cache struct {
	p  *Pipeline
	mu sync.Mutex
	m  map[cacheKey]Map
}

func NewCache(p *Pipeline) *Cache {
	return &Cache{p: p, m: make(map[cacheKey]Map)}
}

func (c *Cache) get(world int64, a Area, node int) (Map, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.m[cacheKey{world, node, a}]
	return m, ok
}

func (c *Cache) put(world int64, a Area, node int, m Map) {
	c.mu.Lock()
	c.m[cacheKey{world, node, a}] = m
	c.mu.Unlock()
}

// Generate 同 Pipeline.Generate，但會讀寫快取。
func (c *Cache) Generate(world int64, a Area, node int) (Map, error) {
	if node < 0 || node >= len(c.p.Nodes) {
		return Map{}, errs.Malformedf("node %d out of range [0,%d)", node, len(c.p.Nodes))
	}
	if a.W < 0 || a.H < 0 {
		return Map{}, errs.Malformedf("negative area %s", a)
	}
	if a.Empty() {
		return NewMap(a), nil
	}
	return c.p.gen(world, a, node, make(map[memoKey]Map), c), nil
}

func (c *Cache) Biomes(world int64, a Area) (Map, error) {
	return c.Generate(world, a, c.p.Out)
}

func (c *Cache) Biomes4(world int64, a Area) (Map, error) {
	return c.Generate(world, a, c.p.RiverMix)
}

// Len 回傳目前的項目數。
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// Reset 清空快取；換 seed 批次時呼叫以釋放記憶體。
func (c *Cache) Reset() {
	c.mu.Lock()
	clear(c.m)
	c.mu.Unlock()
}
