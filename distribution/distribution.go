// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package distribution implements the staking and reward engine. Pools emit
// rewards on a linearly decreasing schedule; stakers accrue them through a
// cumulative rate checkpoint and claims are minted on L2 through the L1
// sender.
package distribution

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/morlabs/distribution/emission"
	"github.com/morlabs/distribution/feeconfig"
	"github.com/morlabs/distribution/l1sender"
	"github.com/morlabs/distribution/log"
	"github.com/morlabs/distribution/metrics"
	"github.com/morlabs/distribution/protocol"
	"github.com/morlabs/distribution/reverts"
	"github.com/morlabs/distribution/solidity"
	"github.com/morlabs/distribution/state"
	"github.com/morlabs/distribution/token"
)

var logger = log.WithContext("pkg", "distribution")

var (
	metricStakes      = metrics.Counter("distribution_stake_count")
	metricWithdrawals = metrics.Counter("distribution_withdraw_count")
	metricClaims      = metrics.Counter("distribution_claim_count")
	metricBridges     = metrics.Counter("distribution_bridge_overplus_count")
)

var (
	errInvalidPayoutStart      = reverts.New("DS: invalid payout start value")
	errInvalidDecreaseInterval = reverts.New("DS: invalid decrease interval")
	errPoolNotExists           = reverts.New("DS: pool doesn't exist")
	errInvalidPoolType         = reverts.New("DS: invalid pool type")
	errPoolNotPublic           = reverts.New("DS: pool isn't public")
	errPoolIsPublic            = reverts.New("DS: pool is public")
	errNothingToStake          = reverts.New("DS: nothing to stake")
	errAmountTooLow            = reverts.New("DS: amount too low")
	errInvalidClaimLockEnd     = reverts.New("DS: invalid claim lock end")
	errPoolWithdrawLocked      = reverts.New("DS: pool withdraw is locked")
	errUserWithdrawLocked      = reverts.New("DS: user withdraw is locked")
	errNothingToWithdraw       = reverts.New("DS: nothing to withdraw")
	errInvalidWithdrawAmount   = reverts.New("DS: invalid withdraw amount")
	errPoolClaimLocked         = reverts.New("DS: pool claim is locked")
	errPoolClaimLockedStake    = reverts.New("DS: pool claim is locked (S)")
	errPoolClaimLockedClaim    = reverts.New("DS: pool claim is locked (C)")
	errUserClaimLocked         = reverts.New("DS: user claim is locked")
	errNothingToClaim          = reverts.New("DS: nothing to claim")
	errUserNotStaked           = reverts.New("DS: user isn't staked")
	errInvalidLockEndOne       = reverts.New("DS: invalid lock end value (1)")
	errInvalidLockEndTwo       = reverts.New("DS: invalid lock end value (2)")
	errOverplusZero            = reverts.New("DS: overplus is zero")
	errInvalidLength           = reverts.New("DS: invalid length")
)

// Distribution is the facade of the staking engine at one contract address.
type Distribution struct {
	addr    common.Address
	state   *state.State
	ownable *solidity.Ownable
	storage *storage

	depositToken *token.DepositToken
	sender       *l1sender.L1Sender
	fees         *feeconfig.FeeConfig
	boost        BoostPolicy
}

func New(addr common.Address, st *state.State) *Distribution {
	context := solidity.NewContext(addr, st)
	return &Distribution{
		addr:    addr,
		state:   st,
		ownable: solidity.NewOwnable(context),
		storage: newStorage(context),
		boost:   flatBoost{},
	}
}

func (d *Distribution) Init(owner common.Address, depositToken *token.DepositToken, sender *l1sender.L1Sender, fees *feeconfig.FeeConfig) error {
	d.ownable.Init(owner)
	d.depositToken = depositToken
	d.sender = sender
	d.fees = fees
	return nil
}

// SetBoostPolicy replaces the virtual-stake policy. Defaults to crediting the
// real deposit.
func (d *Distribution) SetBoostPolicy(policy BoostPolicy) {
	d.boost = policy
}

func (d *Distribution) Address() common.Address {
	return d.addr
}

//
// Getters
//

// PoolCount returns the number of created pools.
func (d *Distribution) PoolCount() (uint64, error) {
	return d.storage.getPoolCount()
}

// GetPool returns the pool definition.
func (d *Distribution) GetPool(poolID uint64) (*Pool, error) {
	pool, exists, err := d.storage.getPool(poolID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errPoolNotExists
	}
	return pool, nil
}

// GetPoolLimits returns the pool's claim cooldowns.
func (d *Distribution) GetPoolLimits(poolID uint64) (*PoolLimits, error) {
	if _, err := d.GetPool(poolID); err != nil {
		return nil, err
	}
	return d.storage.getPoolLimits(poolID)
}

// GetPoolData returns the pool's accrual bookkeeping.
func (d *Distribution) GetPoolData(poolID uint64) (*PoolData, error) {
	if _, err := d.GetPool(poolID); err != nil {
		return nil, err
	}
	return d.storage.getPoolData(poolID)
}

// GetUserData returns the user's checkpoint in the pool.
func (d *Distribution) GetUserData(poolID uint64, user common.Address) (*UserData, error) {
	if _, err := d.GetPool(poolID); err != nil {
		return nil, err
	}
	return d.storage.getUserData(poolID, user)
}

// GetCurrentUserReward returns the reward the user could claim at time now.
func (d *Distribution) GetCurrentUserReward(poolID uint64, user common.Address, now uint64) (*big.Int, error) {
	pool, err := d.GetPool(poolID)
	if err != nil {
		return nil, err
	}
	data, err := d.storage.getPoolData(poolID)
	if err != nil {
		return nil, err
	}
	userData, err := d.storage.getUserData(poolID, user)
	if err != nil {
		return nil, err
	}
	return earned(userData, currentPoolRate(pool, data, now)), nil
}

// GetPeriodRewards returns the pool emission over [start, end).
func (d *Distribution) GetPeriodRewards(poolID uint64, start, end uint64) (*big.Int, error) {
	pool, err := d.GetPool(poolID)
	if err != nil {
		return nil, err
	}
	return emission.Calculate(pool.PayoutStart, pool.DecreaseInterval, pool.InitialReward, pool.RewardDecrease, start, end), nil
}

// TotalDepositedInPublicPools returns the deposit-token principal the
// contract tracks across public pools.
func (d *Distribution) TotalDepositedInPublicPools() (*big.Int, error) {
	return d.storage.getTotalDeposited()
}

// Overplus returns the deposit-token balance exceeding the tracked principal,
// accumulated through rebasing yield.
func (d *Distribution) Overplus() (*big.Int, error) {
	balance, err := d.depositToken.BalanceOf(d.addr)
	if err != nil {
		return nil, err
	}
	total, err := d.storage.getTotalDeposited()
	if err != nil {
		return nil, err
	}
	overplus := new(big.Int).Sub(balance, total)
	if overplus.Sign() < 0 {
		return new(big.Int), nil
	}
	return overplus, nil
}

//
// Pool administration
//

// CreatePool appends a pool. Owner only.
func (d *Distribution) CreatePool(caller common.Address, pool *Pool, now uint64) (poolID uint64, err error) {
	err = d.state.Transact(func() error {
		if err := d.ownable.Check(caller); err != nil {
			return err
		}
		if pool.PayoutStart <= now {
			return errInvalidPayoutStart
		}
		if pool.DecreaseInterval == 0 {
			return errInvalidDecreaseInterval
		}
		count, err := d.storage.getPoolCount()
		if err != nil {
			return err
		}
		poolID = count
		if err := d.storage.setPool(poolID, pool); err != nil {
			return err
		}
		if err := d.storage.setPoolData(poolID, (&PoolData{LastUpdate: now}).ensure()); err != nil {
			return err
		}
		d.storage.setPoolCount(count + 1)

		logger.Info("pool created", "poolID", poolID, "payoutStart", pool.PayoutStart, "isPublic", pool.IsPublic)
		return nil
	})
	return
}

// EditPool changes a pool's schedule and locks. The accrual up to now is
// finalized under the old schedule first. Owner only.
func (d *Distribution) EditPool(caller common.Address, poolID uint64, pool *Pool, now uint64) error {
	return d.state.Transact(func() error {
		if err := d.ownable.Check(caller); err != nil {
			return err
		}
		current, err := d.GetPool(poolID)
		if err != nil {
			return err
		}
		if current.IsPublic != pool.IsPublic {
			return errInvalidPoolType
		}
		if pool.DecreaseInterval == 0 {
			return errInvalidDecreaseInterval
		}
		if err := d.updatePool(poolID, current, now); err != nil {
			return err
		}
		if err := d.storage.setPool(poolID, pool); err != nil {
			return err
		}
		logger.Info("pool edited", "poolID", poolID)
		return nil
	})
}

// EditPoolLimits sets the pool's claim cooldowns. Owner only.
func (d *Distribution) EditPoolLimits(caller common.Address, poolID uint64, limits *PoolLimits) error {
	return d.state.Transact(func() error {
		if err := d.ownable.Check(caller); err != nil {
			return err
		}
		if _, err := d.GetPool(poolID); err != nil {
			return err
		}
		if err := d.storage.setPoolLimits(poolID, limits); err != nil {
			return err
		}
		logger.Info("pool limits edited", "poolID", poolID,
			"afterStake", limits.ClaimLockPeriodAfterStake, "afterClaim", limits.ClaimLockPeriodAfterClaim)
		return nil
	})
}

//
// Staking
//

// Stake deposits amount into a public pool for the caller. claimLockEnd may
// voluntarily lock claiming until the given time; zero keeps the current
// lock.
func (d *Distribution) Stake(caller common.Address, poolID uint64, amount *big.Int, claimLockEnd, now uint64) error {
	return d.state.Transact(func() error {
		pool, err := d.GetPool(poolID)
		if err != nil {
			return err
		}
		if !pool.IsPublic {
			return errPoolNotPublic
		}
		if amount == nil || amount.Sign() <= 0 {
			return errNothingToStake
		}
		if err := d.stake(caller, poolID, pool, amount, claimLockEnd, now, true); err != nil {
			return err
		}
		metricStakes.Add(1)
		return nil
	})
}

// ManageUsersInPrivatePools reconciles each user's deposit in a private pool
// to the target amount, staking or withdrawing the difference. Owner only.
func (d *Distribution) ManageUsersInPrivatePools(caller common.Address, poolID uint64, users []common.Address, amounts []*big.Int, claimLockEnds []uint64, now uint64) error {
	return d.state.Transact(func() error {
		if err := d.ownable.Check(caller); err != nil {
			return err
		}
		pool, err := d.GetPool(poolID)
		if err != nil {
			return err
		}
		if pool.IsPublic {
			return errPoolIsPublic
		}
		if len(users) != len(amounts) || len(users) != len(claimLockEnds) {
			return errInvalidLength
		}
		for i, user := range users {
			userData, err := d.storage.getUserData(poolID, user)
			if err != nil {
				return err
			}
			target := amounts[i]
			switch target.Cmp(userData.Deposited) {
			case 1:
				delta := new(big.Int).Sub(target, userData.Deposited)
				if err := d.stake(user, poolID, pool, delta, claimLockEnds[i], now, false); err != nil {
					return err
				}
			case -1:
				delta := new(big.Int).Sub(userData.Deposited, target)
				if err := d.withdraw(user, poolID, pool, delta, now, false); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Withdraw takes amount of the caller's deposit out of a public pool.
// Requesting at least the whole deposit exits the pool.
func (d *Distribution) Withdraw(caller common.Address, poolID uint64, amount *big.Int, now uint64) error {
	return d.state.Transact(func() error {
		pool, err := d.GetPool(poolID)
		if err != nil {
			return err
		}
		if !pool.IsPublic {
			return errPoolNotPublic
		}
		userData, err := d.storage.getUserData(poolID, caller)
		if err != nil {
			return err
		}
		// locks only apply once the payout has started
		if now > pool.PayoutStart {
			if now <= pool.PayoutStart+pool.WithdrawLockPeriod {
				return errPoolWithdrawLocked
			}
			if now <= userData.LastStake+pool.WithdrawLockPeriodAfterStake {
				return errUserWithdrawLocked
			}
		}
		if err := d.withdraw(caller, poolID, pool, amount, now, true); err != nil {
			return err
		}
		metricWithdrawals.Add(1)
		return nil
	})
}

// Claim sends the caller's accrued reward to receiver as an L2 mint message,
// paying the endpoint fee out of value.
func (d *Distribution) Claim(caller common.Address, poolID uint64, receiver common.Address, value *big.Int, now uint64) error {
	return d.state.Transact(func() error {
		pool, err := d.GetPool(poolID)
		if err != nil {
			return err
		}
		limits, err := d.storage.getPoolLimits(poolID)
		if err != nil {
			return err
		}
		userData, err := d.storage.getUserData(poolID, caller)
		if err != nil {
			return err
		}
		if now <= pool.PayoutStart+pool.ClaimLockPeriod {
			return errPoolClaimLocked
		}
		if now <= userData.LastStake+limits.ClaimLockPeriodAfterStake {
			return errPoolClaimLockedStake
		}
		if userData.LastClaim != 0 && now <= userData.LastClaim+limits.ClaimLockPeriodAfterClaim {
			return errPoolClaimLockedClaim
		}
		if now <= userData.ClaimLockEnd {
			return errUserClaimLocked
		}

		data, err := d.storage.getPoolData(poolID)
		if err != nil {
			return err
		}
		rate := currentPoolRate(pool, data, now)
		pending := earned(userData, rate)
		if pending.Sign() == 0 {
			return errNothingToClaim
		}

		// the voluntary lock is consumed by claiming
		userData.ClaimLockStart = 0
		userData.ClaimLockEnd = 0
		virtual := d.boost.VirtualStake(userData.Deposited, 0, 0, now)

		data.Rate = rate
		data.LastUpdate = now
		data.TotalVirtualDeposited.Sub(data.TotalVirtualDeposited, userData.VirtualDeposited)
		data.TotalVirtualDeposited.Add(data.TotalVirtualDeposited, virtual)

		userData.Rate = rate
		userData.PendingRewards = new(big.Int)
		userData.VirtualDeposited = virtual
		userData.LastClaim = now

		if err := d.storage.setPoolData(poolID, data); err != nil {
			return err
		}
		if err := d.storage.setUserData(poolID, caller, userData); err != nil {
			return err
		}
		if err := d.sender.SendMintMessage(d.addr, receiver, pending, value); err != nil {
			return err
		}
		metricClaims.Add(1)
		logger.Info("claimed", "poolID", poolID, "user", caller, "receiver", receiver, "reward", pending)
		return nil
	})
}

// LockClaim voluntarily locks the caller's claims until claimLockEnd.
// Extension only.
func (d *Distribution) LockClaim(caller common.Address, poolID uint64, claimLockEnd, now uint64) error {
	return d.state.Transact(func() error {
		pool, err := d.GetPool(poolID)
		if err != nil {
			return err
		}
		if claimLockEnd <= now {
			return errInvalidLockEndOne
		}
		userData, err := d.storage.getUserData(poolID, caller)
		if err != nil {
			return err
		}
		if userData.Deposited.Sign() == 0 {
			return errUserNotStaked
		}
		if claimLockEnd <= userData.ClaimLockEnd {
			return errInvalidLockEndTwo
		}

		data, err := d.storage.getPoolData(poolID)
		if err != nil {
			return err
		}
		rate := currentPoolRate(pool, data, now)
		pending := earned(userData, rate)

		userData.ClaimLockStart = now
		userData.ClaimLockEnd = claimLockEnd
		virtual := d.boost.VirtualStake(userData.Deposited, now, claimLockEnd, now)

		data.Rate = rate
		data.LastUpdate = now
		data.TotalVirtualDeposited.Sub(data.TotalVirtualDeposited, userData.VirtualDeposited)
		data.TotalVirtualDeposited.Add(data.TotalVirtualDeposited, virtual)

		userData.Rate = rate
		userData.PendingRewards = pending
		userData.VirtualDeposited = virtual

		if err := d.storage.setPoolData(poolID, data); err != nil {
			return err
		}
		if err := d.storage.setUserData(poolID, caller, userData); err != nil {
			return err
		}
		logger.Info("claim locked", "poolID", poolID, "user", caller, "until", claimLockEnd)
		return nil
	})
}

// BridgeOverplus skims the rebasing yield above the tracked principal, pays
// the protocol fee to the treasury and bridges the rest to L2. Callable by
// anyone.
func (d *Distribution) BridgeOverplus(caller common.Address, gasLimit, maxFeePerGas uint64, maxSubmissionCost *big.Int) (receipt []byte, err error) {
	err = d.state.Transact(func() error {
		overplus, err := d.Overplus()
		if err != nil {
			return err
		}
		if overplus.Sign() == 0 {
			return errOverplusZero
		}
		fee, treasury, err := d.fees.GetFeeAndTreasury(d.addr)
		if err != nil {
			return err
		}
		feeAmount := new(big.Int).Mul(overplus, fee)
		feeAmount.Div(feeAmount, protocol.Precision)
		if feeAmount.Sign() > 0 {
			if err := d.depositToken.Transfer(d.addr, treasury, feeAmount); err != nil {
				return err
			}
		}
		bridged := new(big.Int).Sub(overplus, feeAmount)
		if err := d.depositToken.Transfer(d.addr, d.sender.Address(), bridged); err != nil {
			return err
		}
		receipt, err = d.sender.SendDepositToken(d.addr, gasLimit, maxFeePerGas, maxSubmissionCost)
		if err != nil {
			return err
		}
		metricBridges.Add(1)
		logger.Info("bridged overplus", "caller", caller, "overplus", overplus, "fee", feeAmount)
		return nil
	})
	return
}

//
// Internals
//

func (d *Distribution) stake(user common.Address, poolID uint64, pool *Pool, amount *big.Int, claimLockEnd, now uint64, external bool) error {
	data, err := d.storage.getPoolData(poolID)
	if err != nil {
		return err
	}
	userData, err := d.storage.getUserData(poolID, user)
	if err != nil {
		return err
	}
	if claimLockEnd == 0 {
		claimLockEnd = userData.ClaimLockEnd
	}
	if claimLockEnd < userData.ClaimLockEnd {
		return errInvalidClaimLockEnd
	}

	rate := currentPoolRate(pool, data, now)
	pending := earned(userData, rate)
	deposited := new(big.Int).Add(userData.Deposited, amount)

	if external {
		if deposited.Cmp(pool.MinimalStake) < 0 {
			return errAmountTooLow
		}
		if err := d.depositToken.Transfer(user, d.addr, amount); err != nil {
			return err
		}
		if err := d.storage.addTotalDeposited(amount); err != nil {
			return err
		}
	}

	if claimLockEnd != userData.ClaimLockEnd {
		userData.ClaimLockStart = now
	}
	userData.ClaimLockEnd = claimLockEnd
	virtual := d.boost.VirtualStake(deposited, userData.ClaimLockStart, claimLockEnd, now)

	data.Rate = rate
	data.LastUpdate = now
	data.TotalVirtualDeposited.Sub(data.TotalVirtualDeposited, userData.VirtualDeposited)
	data.TotalVirtualDeposited.Add(data.TotalVirtualDeposited, virtual)

	userData.Deposited = deposited
	userData.VirtualDeposited = virtual
	userData.Rate = rate
	userData.PendingRewards = pending
	userData.LastStake = now

	if err := d.storage.setPoolData(poolID, data); err != nil {
		return err
	}
	if err := d.storage.setUserData(poolID, user, userData); err != nil {
		return err
	}
	logger.Info("staked", "poolID", poolID, "user", user, "amount", amount, "deposited", deposited)
	return nil
}

func (d *Distribution) withdraw(user common.Address, poolID uint64, pool *Pool, amount *big.Int, now uint64, external bool) error {
	data, err := d.storage.getPoolData(poolID)
	if err != nil {
		return err
	}
	userData, err := d.storage.getUserData(poolID, user)
	if err != nil {
		return err
	}
	if userData.Deposited.Sign() == 0 {
		return errNothingToWithdraw
	}

	withdrawn := new(big.Int).Set(amount)
	deposited := new(big.Int)
	if amount.Cmp(userData.Deposited) >= 0 {
		withdrawn.Set(userData.Deposited)
	} else {
		deposited.Sub(userData.Deposited, amount)
	}
	if withdrawn.Sign() == 0 {
		return errNothingToWithdraw
	}
	if external && deposited.Sign() != 0 && deposited.Cmp(pool.MinimalStake) < 0 {
		return errInvalidWithdrawAmount
	}

	rate := currentPoolRate(pool, data, now)
	pending := earned(userData, rate)

	if external {
		if err := d.storage.subTotalDeposited(withdrawn); err != nil {
			return err
		}
		if err := d.depositToken.Transfer(d.addr, user, withdrawn); err != nil {
			return err
		}
	}

	virtual := d.boost.VirtualStake(deposited, userData.ClaimLockStart, userData.ClaimLockEnd, now)

	data.Rate = rate
	data.LastUpdate = now
	data.TotalVirtualDeposited.Sub(data.TotalVirtualDeposited, userData.VirtualDeposited)
	data.TotalVirtualDeposited.Add(data.TotalVirtualDeposited, virtual)

	userData.Deposited = deposited
	userData.VirtualDeposited = virtual
	userData.Rate = rate
	userData.PendingRewards = pending

	if err := d.storage.setPoolData(poolID, data); err != nil {
		return err
	}
	if err := d.storage.setUserData(poolID, user, userData); err != nil {
		return err
	}
	logger.Info("withdrawn", "poolID", poolID, "user", user, "amount", withdrawn, "deposited", deposited)
	return nil
}

// updatePool finalizes the pool accrual at time now under the current
// schedule.
func (d *Distribution) updatePool(poolID uint64, pool *Pool, now uint64) error {
	data, err := d.storage.getPoolData(poolID)
	if err != nil {
		return err
	}
	data.Rate = currentPoolRate(pool, data, now)
	data.LastUpdate = now
	return d.storage.setPoolData(poolID, data)
}

// currentPoolRate extends the cumulative rate with the emission since the
// last update, spread over the virtual deposits. The rate never decreases.
func currentPoolRate(pool *Pool, data *PoolData, now uint64) *big.Int {
	if data.TotalVirtualDeposited.Sign() == 0 || now <= data.LastUpdate {
		return new(big.Int).Set(data.Rate)
	}
	rewards := emission.Calculate(pool.PayoutStart, pool.DecreaseInterval, pool.InitialReward, pool.RewardDecrease, data.LastUpdate, now)
	accrued := new(big.Int).Mul(rewards, protocol.Precision)
	accrued.Div(accrued, data.TotalVirtualDeposited)
	return accrued.Add(accrued, data.Rate)
}

// earned is the user's claimable reward at the given pool rate.
func earned(userData *UserData, rate *big.Int) *big.Int {
	reward := new(big.Int).Sub(rate, userData.Rate)
	reward.Mul(reward, userData.VirtualDeposited)
	reward.Div(reward, protocol.Precision)
	return reward.Add(reward, userData.PendingRewards)
}
