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
	"math"
	"math/bits"

	"github.com/zintix-labs/seedlab/errs"
)

const (
	pcgMul       = 6364136223846793005
	pcgFloatUnit = 1.0 / (1 << 32)
	pcgStream    = 1
	pcgSnapLen   = 16
)

// PCG32 : 64-bit 狀態、32-bit 輸出的 PCG (XSH RR)。
// 只用於 generate 挑選座標與雜訊，和世界生成的 LCG 無關。
type PCG32 struct {
	state uint64
	inc   uint64
}

// NewPCG32 以 seed 建立 PCG32；相同 seed 產生相同序列。
func NewPCG32(seed int64) *PCG32 {
	r := &PCG32{inc: pcgStream<<1 | 1}
	// 參考實作的初始化：step，加上 seed，再 step
	r.step()
	r.state += uint64(seed)
	r.step()
	return r
}

func (r *PCG32) step() uint32 {
	old := r.state
	r.state = old*pcgMul + r.inc
	xs := uint32(((old >> 18) ^ old) >> 27)
	return bits.RotateLeft32(xs, -int(old>>59))
}

func (r *PCG32) Uint32() uint32 { return r.step() }

func (r *PCG32) Uint64() uint64 {
	hi := uint64(r.step())
	return hi<<32 | uint64(r.step())
}

// UintN 回傳 [0,max)；max == 0 回傳 0。
func (r *PCG32) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	return uint(r.below64(uint64(max)))
}

// IntN 回傳 [0,max)；max <= 0 回傳 -1。
func (r *PCG32) IntN(max int) int {
	switch {
	case max <= 0:
		return -1
	case max <= math.MaxUint32:
		return int(r.below32(uint32(max)))
	default:
		return int(r.below64(uint64(max)))
	}
}

// Float64 回傳 [0,1)，32-bit 精度。
func (r *PCG32) Float64() float64 {
	return float64(r.step()) * pcgFloatUnit
}

// Snapshot : state 與 inc 各 8 bytes（big endian）。
func (r *PCG32) Snapshot() ([]byte, error) {
	b := make([]byte, 0, pcgSnapLen)
	b = binary.BigEndian.AppendUint64(b, r.state)
	return binary.BigEndian.AppendUint64(b, r.inc), nil
}

func (r *PCG32) Restore(data []byte) error {
	if len(data) != pcgSnapLen {
		return errs.Warnf("pcg32 snapshot must be %d bytes, got %d", pcgSnapLen, len(data))
	}
	r.state = binary.BigEndian.Uint64(data[:8])
	r.inc = binary.BigEndian.Uint64(data[8:])
	return nil
}

// below32 / below64 以拒絕取樣去除取模偏差。
func (r *PCG32) below32(bound uint32) uint32 {
	threshold := -bound % bound
	for {
		if v := r.step(); v >= threshold {
			return v % bound
		}
	}
}

func (r *PCG32) below64(bound uint64) uint64 {
	threshold := -bound % bound
	for {
		if v := r.Uint64(); v >= threshold {
			return v % bound
		}
	}
}
