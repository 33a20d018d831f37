// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/morlabs/distribution/protocol"
)

// Devnet addresses, funded out of thin air for local play.
var (
	DevOwner    = common.HexToAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa")
	DevTreasury = common.HexToAddress("0x435933c8064b4ae76be665428e0307ef2ccfbd68")
	DevAccounts = []common.Address{
		common.HexToAddress("0x0f872421dc479f3c11edd89512731814d0598db5"),
		common.HexToAddress("0xf370940abdbd7e5f8b6fd4b0ef7b97273c0507dc"),
		common.HexToAddress("0x99602e4bbc0503b8ff4432bb1857f916c3653b85"),
	}
)

// Devnet returns a ready-to-run single-pool config: daily emission starting
// one day after launch, decreasing one token per day, no locks.
func Devnet(launchTime uint64) *Config {
	const day = 24 * 60 * 60

	accounts := make([]AccountConfig, len(DevAccounts))
	for i, addr := range DevAccounts {
		balance := Amount(*new(big.Int).Mul(protocol.OneToken, big.NewInt(10_000)))
		accounts[i] = AccountConfig{Address: Address(addr), Balance: &balance}
	}

	initialReward := Amount(*new(big.Int).Mul(protocol.OneToken, big.NewInt(1000)))
	rewardDecrease := Amount(*new(big.Int).Set(protocol.OneToken))
	minimalStake := Amount(*new(big.Int).Set(protocol.OneToken))
	lzFee := Amount(*big.NewInt(0))

	return &Config{
		ProtocolName: "morpheus-dev",
		Owner:        Address(DevOwner),
		Treasury:     Address(DevTreasury),
		LzFee:        &lzFee,
		L2ChainID:    110,
		LaunchTime:   launchTime,
		Mor: MorConfig{
			Name:   "Morpheus Dev Token",
			Symbol: "MOR",
		},
		Accounts: accounts,
		Pools: []PoolConfig{{
			PayoutStart:      launchTime + day,
			DecreaseInterval: day,
			InitialReward:    &initialReward,
			RewardDecrease:   &rewardDecrease,
			MinimalStake:     &minimalStake,
			IsPublic:         true,
		}},
	}
}
