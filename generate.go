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

package seedlab

import (
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/evidence"
	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/sdk/layer"
	"github.com/zintix-labs/seedlab/sdk/slime"
)

// GenerateOptions 控制合成證據的取樣。
type GenerateOptions struct {
	// Sampler 為取樣座標所用的 seed
	Sampler int64 `json:"sampler" yaml:"sampler"`
	// SlimeRadius 為 chunk 半徑，Slime / NegativeSlime 為正反例數
	SlimeRadius   int `json:"slime_radius" yaml:"slime_radius"`
	Slime         int `json:"slime" yaml:"slime"`
	NegativeSlime int `json:"negative_slime" yaml:"negative_slime"`
	// BiomeRadius 為方塊半徑
	BiomeRadius  int  `json:"biome_radius" yaml:"biome_radius"`
	BiomeSamples int  `json:"biome_samples" yaml:"biome_samples"`
	NextLong     bool `json:"next_long" yaml:"next_long"`
}

func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		SlimeRadius:   8,
		Slime:         10,
		NegativeSlime: 10,
		BiomeRadius:   256,
		BiomeSamples:  32,
	}
}

// Generate 由已知 seed 產生一份合成證據，取樣結果只取決於 world 與 o。
func (l *Lab) Generate(world int64, o GenerateOptions) (*evidence.Evidence, error) {
	if o.Slime < 0 || o.NegativeSlime < 0 || o.BiomeSamples < 0 || o.SlimeRadius < 0 || o.BiomeRadius < 0 {
		return nil, errs.Malformedf("generate options must be >= 0: %+v", o)
	}
	c := core.New(l.prng.New(o.Sampler))
	ev := &evidence.Evidence{
		Version: evidence.CurrentVersion,
		Options: evidence.Options{NextLong: o.NextLong},
	}

	if o.Slime+o.NegativeSlime > 0 {
		side := 2*o.SlimeRadius + 1
		for _, idx := range c.Sample(side*side, side*side) {
			ch := slime.Chunk{X: int32(idx%side - o.SlimeRadius), Z: int32(idx/side - o.SlimeRadius)}
			if slime.IsSlimeChunk(world, ch.X, ch.Z) {
				if len(ev.SlimeChunks) < o.Slime {
					ev.SlimeChunks = append(ev.SlimeChunks, ch)
				}
			} else if len(ev.NegativeSlimeChunks) < o.NegativeSlime {
				ev.NegativeSlimeChunks = append(ev.NegativeSlimeChunks, ch)
			}
			if len(ev.SlimeChunks) == o.Slime && len(ev.NegativeSlimeChunks) == o.NegativeSlime {
				break
			}
		}
		if len(ev.SlimeChunks) < o.Slime {
			l.log.Warn("not enough slime chunks in radius", "want", o.Slime, "got", len(ev.SlimeChunks), "radius", o.SlimeRadius)
		}
	}

	if o.BiomeSamples > 0 {
		cache := layer.NewCache(l.pipe)
		r := int64(o.BiomeRadius)
		seen := make(map[[2]int64]struct{}, o.BiomeSamples)
		// 半徑內的點不足時提早結束
		for tries := 0; len(seen) < o.BiomeSamples && tries < 4*o.BiomeSamples; tries++ {
			x, z := c.Between(-r, r), c.Between(-r, r)
			if _, ok := seen[[2]int64{x, z}]; ok {
				continue
			}
			seen[[2]int64{x, z}] = struct{}{}
			m, err := cache.Biomes(world, layer.Area{X: int(x), Z: int(z), W: 1, H: 1})
			if err != nil {
				return nil, err
			}
			ev.AddBiome(m.Data[0], x, z)
		}
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	l.log.Debug("evidence generated", "seed", world, "slime", len(ev.SlimeChunks), "negative", len(ev.NegativeSlimeChunks), "biomes", ev.BiomeCount())
	return ev, nil
}
