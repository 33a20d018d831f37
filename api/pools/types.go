// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/morlabs/distribution/distribution"
)

// Pool is the JSON shape of a reward pool definition.
type Pool struct {
	ID                           uint64               `json:"id"`
	PayoutStart                  uint64               `json:"payoutStart"`
	DecreaseInterval             uint64               `json:"decreaseInterval"`
	WithdrawLockPeriod           uint64               `json:"withdrawLockPeriod"`
	ClaimLockPeriod              uint64               `json:"claimLockPeriod"`
	WithdrawLockPeriodAfterStake uint64               `json:"withdrawLockPeriodAfterStake"`
	InitialReward                math.HexOrDecimal256 `json:"initialReward"`
	RewardDecrease               math.HexOrDecimal256 `json:"rewardDecrease"`
	MinimalStake                 math.HexOrDecimal256 `json:"minimalStake"`
	IsPublic                     bool                 `json:"isPublic"`
}

func convertPool(id uint64, p *distribution.Pool) *Pool {
	return &Pool{
		ID:                           id,
		PayoutStart:                  p.PayoutStart,
		DecreaseInterval:             p.DecreaseInterval,
		WithdrawLockPeriod:           p.WithdrawLockPeriod,
		ClaimLockPeriod:              p.ClaimLockPeriod,
		WithdrawLockPeriodAfterStake: p.WithdrawLockPeriodAfterStake,
		InitialReward:                math.HexOrDecimal256(*p.InitialReward),
		RewardDecrease:               math.HexOrDecimal256(*p.RewardDecrease),
		MinimalStake:                 math.HexOrDecimal256(*p.MinimalStake),
		IsPublic:                     p.IsPublic,
	}
}

// PoolData is the JSON shape of a pool's accrual state.
type PoolData struct {
	LastUpdate            uint64               `json:"lastUpdate"`
	Rate                  math.HexOrDecimal256 `json:"rate"`
	TotalVirtualDeposited math.HexOrDecimal256 `json:"totalVirtualDeposited"`
}

func convertPoolData(d *distribution.PoolData) *PoolData {
	return &PoolData{
		LastUpdate:            d.LastUpdate,
		Rate:                  math.HexOrDecimal256(*d.Rate),
		TotalVirtualDeposited: math.HexOrDecimal256(*d.TotalVirtualDeposited),
	}
}

// PoolLimits is the JSON shape of a pool's claim cooldowns.
type PoolLimits struct {
	ClaimLockPeriodAfterStake uint64 `json:"claimLockPeriodAfterStake"`
	ClaimLockPeriodAfterClaim uint64 `json:"claimLockPeriodAfterClaim"`
}

func convertPoolLimits(l *distribution.PoolLimits) *PoolLimits {
	return &PoolLimits{
		ClaimLockPeriodAfterStake: l.ClaimLockPeriodAfterStake,
		ClaimLockPeriodAfterClaim: l.ClaimLockPeriodAfterClaim,
	}
}

// UserData is the JSON shape of a staker's position in a pool.
type UserData struct {
	LastStake        uint64               `json:"lastStake"`
	Deposited        math.HexOrDecimal256 `json:"deposited"`
	VirtualDeposited math.HexOrDecimal256 `json:"virtualDeposited"`
	PendingRewards   math.HexOrDecimal256 `json:"pendingRewards"`
	ClaimLockStart   uint64               `json:"claimLockStart"`
	ClaimLockEnd     uint64               `json:"claimLockEnd"`
	LastClaim        uint64               `json:"lastClaim"`
}

func convertUserData(u *distribution.UserData) *UserData {
	return &UserData{
		LastStake:        u.LastStake,
		Deposited:        math.HexOrDecimal256(*u.Deposited),
		VirtualDeposited: math.HexOrDecimal256(*u.VirtualDeposited),
		PendingRewards:   math.HexOrDecimal256(*u.PendingRewards),
		ClaimLockStart:   u.ClaimLockStart,
		ClaimLockEnd:     u.ClaimLockEnd,
		LastClaim:        u.LastClaim,
	}
}
