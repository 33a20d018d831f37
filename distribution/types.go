// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distribution

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Pool holds the reward schedule and the lock parameters of one pool. The
// schedule is a linear interval decrease: InitialReward per DecreaseInterval,
// shrinking by RewardDecrease each interval, floored at zero.
type Pool struct {
	PayoutStart                  uint64
	DecreaseInterval             uint64
	WithdrawLockPeriod           uint64
	ClaimLockPeriod              uint64
	WithdrawLockPeriodAfterStake uint64
	InitialReward                *big.Int
	RewardDecrease               *big.Int
	MinimalStake                 *big.Int
	IsPublic                     bool
}

func (p *Pool) ensure() *Pool {
	if p.InitialReward == nil {
		p.InitialReward = new(big.Int)
	}
	if p.RewardDecrease == nil {
		p.RewardDecrease = new(big.Int)
	}
	if p.MinimalStake == nil {
		p.MinimalStake = new(big.Int)
	}
	return p
}

// PoolLimits holds the claim cooldowns that can be tightened after a pool is
// created.
type PoolLimits struct {
	ClaimLockPeriodAfterStake uint64
	ClaimLockPeriodAfterClaim uint64
}

// PoolData is the accrual bookkeeping of a pool. Rate is the cumulative
// reward per virtual token, scaled by the fixed-point precision.
type PoolData struct {
	LastUpdate            uint64
	Rate                  *big.Int
	TotalVirtualDeposited *big.Int
}

func (d *PoolData) ensure() *PoolData {
	if d.Rate == nil {
		d.Rate = new(big.Int)
	}
	if d.TotalVirtualDeposited == nil {
		d.TotalVirtualDeposited = new(big.Int)
	}
	return d
}

// UserData is the per-user checkpoint within one pool.
type UserData struct {
	LastStake        uint64
	Deposited        *big.Int
	VirtualDeposited *big.Int
	Rate             *big.Int
	PendingRewards   *big.Int
	ClaimLockStart   uint64
	ClaimLockEnd     uint64
	LastClaim        uint64
}

func (u *UserData) ensure() *UserData {
	if u.Deposited == nil {
		u.Deposited = new(big.Int)
	}
	if u.VirtualDeposited == nil {
		u.VirtualDeposited = new(big.Int)
	}
	if u.Rate == nil {
		u.Rate = new(big.Int)
	}
	if u.PendingRewards == nil {
		u.PendingRewards = new(big.Int)
	}
	return u
}

// userKey addresses a user's checkpoint within a pool.
type userKey struct {
	poolID uint64
	user   common.Address
}

func (k userKey) Bytes() []byte {
	b := make([]byte, 0, 8+common.AddressLength)
	b = binary.BigEndian.AppendUint64(b, k.poolID)
	return append(b, k.user.Bytes()...)
}

// BoostPolicy computes the virtual stake credited to a user given the real
// deposit and the voluntary claim lock window.
type BoostPolicy interface {
	VirtualStake(deposited *big.Int, claimLockStart, claimLockEnd, now uint64) *big.Int
}

// flatBoost credits exactly the real deposit.
type flatBoost struct{}

func (flatBoost) VirtualStake(deposited *big.Int, _, _, _ uint64) *big.Int {
	return new(big.Int).Set(deposited)
}
