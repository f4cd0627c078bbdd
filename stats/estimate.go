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
	"gonum.org/v1/gonum/stat/distuv"
)

// SlimeRate 為隨機 chunk 是 slime chunk 的機率。
const SlimeRate = 0.1

// SlimePassProbability 回傳隨機 seed 通過 slime 證據的機率：
// pos 個正例中不符數 <= marginPos，且 neg 個反例中不符數 <= marginNeg。
// 兩者獨立，各自為二項分佈。
func SlimePassProbability(pos, neg, marginPos, marginNeg int) float64 {
	return binomCDF(marginPos, pos, 1-SlimeRate) * binomCDF(marginNeg, neg, SlimeRate)
}

// binomCDF : P(X <= k), X ~ Bin(n, p)
func binomCDF(k, n int, p float64) float64 {
	if k >= n {
		return 1
	}
	if k < 0 {
		return 0
	}
	b := distuv.Binomial{N: float64(n), P: p}
	return b.CDF(float64(k))
}

// ExpectedFalseMatches 為在 space 個隨機候選中預期的誤判數。
func ExpectedFalseMatches(pos, neg, marginPos, marginNeg int, space float64) float64 {
	return SlimePassProbability(pos, neg, marginPos, marginNeg) * space
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k >= n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}
