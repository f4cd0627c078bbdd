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

package core

import (
	"encoding/binary"

	"github.com/zintix-labs/seedlab/errs"
)

const (
	floatUnit  = 1.0 / (1 << 24)
	doubleUnit = 1.0 / (1 << 53)
)

// Random 位元級對齊 java.util.Random。
// 零值等同 state == 0（並非 seed 0），一般請用 NewRandom。
type Random struct {
	state uint64
}

// NewRandom 等同 new Random(seed)。
func NewRandom(seed int64) *Random {
	return &Random{state: Scramble(seed)}
}

// FromState 直接以 48-bit state 建立（不做 scramble）。
func FromState(state uint64) *Random {
	return &Random{state: state & Mask48}
}

// SetSeed 等同 setSeed(seed)。
func (r *Random) SetSeed(seed int64) {
	r.state = Scramble(seed)
}

func (r *Random) State() uint64 { return r.state }

func (r *Random) SetState(s uint64) { r.state = s & Mask48 }

// Next 前進一步並回傳最高 bits 位（有號）。
func (r *Random) Next(bits uint) int32 {
	r.state = NextState(r.state)
	return int32(r.state >> (48 - bits))
}

// NextInt 等同 nextInt(n)，n <= 0 時回傳 -1（Java 會丟例外）。
func (r *Random) NextInt(n int32) int32 {
	if n <= 0 {
		return -1
	}
	if n&(-n) == n {
		return int32((int64(n) * int64(r.Next(31))) >> 31)
	}
	for {
		bits := r.Next(31)
		val := bits % n
		// int32 溢位即拒絕
		if bits-val+(n-1) >= 0 {
			return val
		}
	}
}

// NextLong 等同 nextLong()。
func (r *Random) NextLong() int64 {
	hi := int64(r.Next(32))
	lo := int64(r.Next(32))
	return (hi << 32) + lo
}

func (r *Random) NextBool() bool {
	return r.Next(1) != 0
}

func (r *Random) NextFloat() float32 {
	return float32(r.Next(24)) * floatUnit
}

func (r *Random) NextDouble() float64 {
	hi := int64(r.Next(26))
	lo := int64(r.Next(27))
	return float64((hi<<27)+lo) * doubleUnit
}

// Skip 前進 n 步而不產生輸出；n 可為負數（倒退）。
func (r *Random) Skip(n int64) {
	r.state = SkipState(r.state, n)
}

// Back 倒退一步。
func (r *Random) Back() {
	r.state = PrevState(r.state)
}

// ---------------------------------------
// PRNG 介面實作，使 Random 可交給 Core 使用
// ---------------------------------------

func (r *Random) Uint64() uint64 {
	return uint64(r.NextLong())
}

func (r *Random) Float64() float64 {
	return r.NextDouble()
}

func (r *Random) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	if max <= 1<<31-1 {
		return uint(r.NextInt(int32(max)))
	}
	return uint(r.Uint64() % uint64(max))
}

func (r *Random) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	return int(r.UintN(uint(max)))
}

func (r *Random) Snapshot() ([]byte, error) {
	return binary.BigEndian.AppendUint64(make([]byte, 0, 8), r.state), nil
}

func (r *Random) Restore(data []byte) error {
	if len(data) != 8 {
		return errs.Warnf("random snapshot must be 8 bytes, got %d", len(data))
	}
	r.state = binary.BigEndian.Uint64(data) & Mask48
	return nil
}
