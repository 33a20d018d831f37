// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package emission

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	payoutStart = uint64(1_000_000)
	day         = uint64(86400)
)

func calc(initial, decrease int64, start, end uint64) *big.Int {
	return Calculate(payoutStart, day, big.NewInt(initial), big.NewInt(decrease), start, end)
}

func TestFullBucketRates(t *testing.T) {
	// bucket k emits max(initial - k*decrease, 0) over a full interval
	for k := uint64(0); k < 15; k++ {
		start := payoutStart + k*day
		got := calc(1000, 100, start, start+day)

		want := int64(1000) - int64(k)*100
		if want < 0 {
			want = 0
		}
		assert.Equal(t, want, got.Int64(), "bucket %d", k)
	}
}

func TestBeforePayoutStart(t *testing.T) {
	assert.Zero(t, calc(1000, 100, 0, payoutStart).Sign())
	assert.Zero(t, calc(1000, 100, payoutStart-day, payoutStart-1).Sign())

	// window straddling payoutStart only counts the part after it
	assert.Equal(t, int64(1000), calc(1000, 100, payoutStart-day, payoutStart+day).Int64())
}

func TestFloorsAtZeroAndStaysFlat(t *testing.T) {
	// 1000/100 -> ten emitting buckets, total 1000+900+...+100 = 5500
	total := calc(1000, 100, payoutStart, payoutStart+100*day)
	assert.Equal(t, int64(5500), total.Int64())

	// nothing emitted long after the zero crossing
	assert.Zero(t, calc(1000, 100, payoutStart+50*day, payoutStart+60*day).Sign())
}

func TestFlatSchedule(t *testing.T) {
	// zero decrease emits the initial reward forever
	assert.Equal(t, int64(3000), calc(1000, 0, payoutStart, payoutStart+3*day).Int64())
	assert.Equal(t, int64(1000), calc(1000, 0, payoutStart+1000*day, payoutStart+1001*day).Int64())
}

func TestPartialBuckets(t *testing.T) {
	// half of bucket 0
	assert.Equal(t, int64(500), calc(1000, 100, payoutStart, payoutStart+day/2).Int64())
	// second half of bucket 1
	assert.Equal(t, int64(450), calc(1000, 100, payoutStart+day+day/2, payoutStart+2*day).Int64())
	// window spanning a partial, two full and a partial bucket:
	// 500 (half of b0) + 900 (b1) + 800 (b2) + 350 (half of b3)
	assert.Equal(t, int64(2550), calc(1000, 100, payoutStart+day/2, payoutStart+3*day+day/2).Int64())
}

func TestAdditivity(t *testing.T) {
	points := []uint64{
		payoutStart - day,
		payoutStart,
		payoutStart + day/3,
		payoutStart + day,
		payoutStart + 5*day + 17,
		payoutStart + 12*day,
		payoutStart + 200*day,
	}
	for i := 0; i < len(points); i++ {
		for j := i; j < len(points); j++ {
			for k := j; k < len(points); k++ {
				a, b, c := points[i], points[j], points[k]
				whole := calc(1000, 100, a, c)
				split := new(big.Int).Add(calc(1000, 100, a, b), calc(1000, 100, b, c))
				assert.Zero(t, whole.Cmp(split), "a=%d b=%d c=%d", a, b, c)
			}
		}
	}
}

func TestDegenerateWindows(t *testing.T) {
	assert.Zero(t, calc(1000, 100, payoutStart+day, payoutStart+day).Sign())
	assert.Zero(t, calc(1000, 100, payoutStart+2*day, payoutStart+day).Sign())
	assert.Zero(t, Calculate(payoutStart, 0, big.NewInt(1000), big.NewInt(100), payoutStart, payoutStart+day).Sign())
}

func TestLargeScaleNoOverflow(t *testing.T) {
	initial, _ := new(big.Int).SetString("3456000000000000000000", 10) // 3456e18
	decrease, _ := new(big.Int).SetString("592558728890000000", 10)

	total := Calculate(payoutStart, day, initial, decrease, payoutStart, payoutStart+20000*day)

	// closed form: schedule zeroes out after ceil(initial/decrease) = 5833 buckets
	buckets := new(big.Int).Quo(initial, decrease)
	buckets.Add(buckets, big.NewInt(1))
	series := new(big.Int).Mul(buckets, initial)
	tri := new(big.Int).Sub(buckets, big.NewInt(1))
	tri.Mul(tri, buckets)
	tri.Quo(tri, big.NewInt(2))
	tri.Mul(tri, decrease)
	series.Sub(series, tri)

	assert.Zero(t, total.Cmp(series))
	assert.Positive(t, total.Sign())
}
