// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package emission computes the linearly-decreasing-then-flat reward schedule.
// Time since payout start is partitioned into fixed buckets; bucket k emits
// max(initialReward - k*rewardDecrease, 0) per full interval. All arithmetic
// is integer big.Int, no floating point.
package emission

import (
	"math/big"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Calculate returns the total reward emitted in the window [start, end).
// Windows before payoutStart emit nothing. The result is computed as a
// difference of a prefix sum, so for any a <= b <= c:
// Calculate(a,c) == Calculate(a,b) + Calculate(b,c), exactly.
func Calculate(payoutStart, interval uint64, initialReward, rewardDecrease *big.Int, start, end uint64) *big.Int {
	if interval == 0 || end <= start || end <= payoutStart {
		return new(big.Int)
	}
	if start < payoutStart {
		start = payoutStart
	}

	head := prefix(interval, initialReward, rewardDecrease, start-payoutStart)
	tail := prefix(interval, initialReward, rewardDecrease, end-payoutStart)
	return tail.Sub(tail, head)
}

// prefix returns the total emitted in [payoutStart, payoutStart+elapsed).
func prefix(interval uint64, initialReward, rewardDecrease *big.Int, elapsed uint64) *big.Int {
	fullBuckets := new(big.Int).SetUint64(elapsed / interval)
	remainder := elapsed % interval

	// number of whole buckets still emitting, schedule floors at zero
	emitting := fullBuckets
	if rewardDecrease.Sign() > 0 {
		nonZero := new(big.Int).Add(initialReward, rewardDecrease)
		nonZero.Sub(nonZero, one)
		nonZero.Quo(nonZero, rewardDecrease) // ceil(initialReward / rewardDecrease)
		if fullBuckets.Cmp(nonZero) > 0 {
			emitting = nonZero
		}
	}

	// arithmetic series: emitting*initialReward - rewardDecrease*emitting*(emitting-1)/2
	total := new(big.Int).Mul(emitting, initialReward)
	triangle := new(big.Int).Sub(emitting, one)
	triangle.Mul(triangle, emitting)
	triangle.Quo(triangle, two)
	triangle.Mul(triangle, rewardDecrease)
	total.Sub(total, triangle)

	if remainder > 0 {
		rate := new(big.Int).Mul(fullBuckets, rewardDecrease)
		rate.Sub(initialReward, rate)
		if rate.Sign() > 0 {
			rate.Mul(rate, new(big.Int).SetUint64(remainder))
			rate.Quo(rate, new(big.Int).SetUint64(interval))
			total.Add(total, rate)
		}
	}
	return total
}
