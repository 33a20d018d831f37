// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distribution

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/morlabs/distribution/solidity"
)

var (
	slotPools          = solidity.SlotPosition("distribution-pools")
	slotPoolsLimits    = solidity.SlotPosition("distribution-pools-limits")
	slotPoolsData      = solidity.SlotPosition("distribution-pools-data")
	slotUsersData      = solidity.SlotPosition("distribution-users-data")
	slotPoolCount      = solidity.SlotPosition("distribution-pool-count")
	slotTotalDeposited = solidity.SlotPosition("distribution-total-deposited")
)

type storage struct {
	pools          *solidity.Mapping[solidity.Uint64Key, *Pool]
	poolsLimits    *solidity.Mapping[solidity.Uint64Key, *PoolLimits]
	poolsData      *solidity.Mapping[solidity.Uint64Key, *PoolData]
	usersData      *solidity.Mapping[userKey, *UserData]
	poolCount      *solidity.Uint64
	totalDeposited *solidity.Uint256
}

func newStorage(context *solidity.Context) *storage {
	return &storage{
		pools:          solidity.NewMapping[solidity.Uint64Key, *Pool](context, slotPools),
		poolsLimits:    solidity.NewMapping[solidity.Uint64Key, *PoolLimits](context, slotPoolsLimits),
		poolsData:      solidity.NewMapping[solidity.Uint64Key, *PoolData](context, slotPoolsData),
		usersData:      solidity.NewMapping[userKey, *UserData](context, slotUsersData),
		poolCount:      solidity.NewUint64(context, slotPoolCount),
		totalDeposited: solidity.NewUint256(context, slotTotalDeposited),
	}
}

func (s *storage) getPool(poolID uint64) (*Pool, bool, error) {
	exists, err := s.pools.Has(solidity.Uint64Key(poolID))
	if err != nil {
		return nil, false, errors.Wrap(err, "check pool")
	}
	if !exists {
		return nil, false, nil
	}
	pool, err := s.pools.Get(solidity.Uint64Key(poolID))
	if err != nil {
		return nil, false, errors.Wrap(err, "get pool")
	}
	return pool.ensure(), true, nil
}

func (s *storage) setPool(poolID uint64, pool *Pool) error {
	return errors.Wrap(s.pools.Set(solidity.Uint64Key(poolID), pool), "set pool")
}

func (s *storage) getPoolLimits(poolID uint64) (*PoolLimits, error) {
	limits, err := s.poolsLimits.Get(solidity.Uint64Key(poolID))
	if err != nil {
		return nil, errors.Wrap(err, "get pool limits")
	}
	return limits, nil
}

func (s *storage) setPoolLimits(poolID uint64, limits *PoolLimits) error {
	return errors.Wrap(s.poolsLimits.Set(solidity.Uint64Key(poolID), limits), "set pool limits")
}

func (s *storage) getPoolData(poolID uint64) (*PoolData, error) {
	data, err := s.poolsData.Get(solidity.Uint64Key(poolID))
	if err != nil {
		return nil, errors.Wrap(err, "get pool data")
	}
	return data.ensure(), nil
}

func (s *storage) setPoolData(poolID uint64, data *PoolData) error {
	return errors.Wrap(s.poolsData.Set(solidity.Uint64Key(poolID), data), "set pool data")
}

func (s *storage) getUserData(poolID uint64, user common.Address) (*UserData, error) {
	data, err := s.usersData.Get(userKey{poolID, user})
	if err != nil {
		return nil, errors.Wrap(err, "get user data")
	}
	return data.ensure(), nil
}

func (s *storage) setUserData(poolID uint64, user common.Address, data *UserData) error {
	return errors.Wrap(s.usersData.Set(userKey{poolID, user}, data), "set user data")
}

func (s *storage) getPoolCount() (uint64, error) {
	count, err := s.poolCount.Get()
	return count, errors.Wrap(err, "get pool count")
}

func (s *storage) setPoolCount(count uint64) {
	s.poolCount.Set(count)
}

func (s *storage) getTotalDeposited() (*big.Int, error) {
	total, err := s.totalDeposited.Get()
	return total, errors.Wrap(err, "get total deposited")
}

func (s *storage) addTotalDeposited(amount *big.Int) error {
	return errors.Wrap(s.totalDeposited.Add(amount), "add total deposited")
}

func (s *storage) subTotalDeposited(amount *big.Int) error {
	return errors.Wrap(s.totalDeposited.Sub(amount), "sub total deposited")
}
