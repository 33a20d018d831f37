// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package feeconfig implements the protocol fee lookup: a base fee and
// treasury with optional per-address fee overrides, owner-mutable.
package feeconfig

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/morlabs/distribution/protocol"
	"github.com/morlabs/distribution/reverts"
	"github.com/morlabs/distribution/solidity"
	"github.com/morlabs/distribution/state"
)

var (
	slotBaseFee  = common.Hash(crypto.Keccak256Hash([]byte("fee-config-base-fee")))
	slotTreasury = common.Hash(crypto.Keccak256Hash([]byte("fee-config-treasury")))
	slotFees     = common.Hash(crypto.Keccak256Hash([]byte("fee-config-fees")))
)

var (
	errInvalidBaseFee  = reverts.New("FC: invalid base fee")
	errInvalidFee      = reverts.New("FC: invalid fee")
	errInvalidTreasury = reverts.New("FC: invalid treasury")
)

// FeeConfig resolves the fee fraction and treasury for a given payer.
// Fees are fixed-point against protocol.Precision; Precision itself is 100%.
type FeeConfig struct {
	ownable  *solidity.Ownable
	baseFee  *solidity.Uint256
	treasury *solidity.Address
	fees     *solidity.Mapping[common.Address, *big.Int]
}

func New(addr common.Address, st *state.State) *FeeConfig {
	context := solidity.NewContext(addr, st)
	return &FeeConfig{
		ownable:  solidity.NewOwnable(context),
		baseFee:  solidity.NewUint256(context, slotBaseFee),
		treasury: solidity.NewAddress(context, slotTreasury),
		fees:     solidity.NewMapping[common.Address, *big.Int](context, slotFees),
	}
}

func (f *FeeConfig) Init(owner, treasury common.Address, baseFee *big.Int) error {
	if baseFee.Cmp(protocol.Precision) > 0 {
		return errInvalidBaseFee
	}
	if treasury == (common.Address{}) {
		return errInvalidTreasury
	}
	f.ownable.Init(owner)
	f.baseFee.Set(baseFee)
	f.treasury.Set(treasury)
	return nil
}

// SetFee sets a per-address fee override. Owner only.
func (f *FeeConfig) SetFee(caller, sender common.Address, fee *big.Int) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	if fee.Cmp(protocol.Precision) > 0 {
		return errInvalidFee
	}
	return f.fees.Set(sender, fee)
}

// SetTreasury points fees at a new treasury. Owner only.
func (f *FeeConfig) SetTreasury(caller, treasury common.Address) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	if treasury == (common.Address{}) {
		return errInvalidTreasury
	}
	f.treasury.Set(treasury)
	return nil
}

// SetBaseFee sets the default fee. Owner only.
func (f *FeeConfig) SetBaseFee(caller common.Address, baseFee *big.Int) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	if baseFee.Cmp(protocol.Precision) > 0 {
		return errInvalidBaseFee
	}
	f.baseFee.Set(baseFee)
	return nil
}

// GetFeeAndTreasury returns the fee applying to sender (the override if one
// was set, otherwise the base fee) together with the treasury.
func (f *FeeConfig) GetFeeAndTreasury(sender common.Address) (*big.Int, common.Address, error) {
	treasury, err := f.treasury.Get()
	if err != nil {
		return nil, common.Address{}, err
	}
	hasOverride, err := f.fees.Has(sender)
	if err != nil {
		return nil, common.Address{}, err
	}
	if hasOverride {
		fee, err := f.fees.Get(sender)
		if err != nil {
			return nil, common.Address{}, err
		}
		return fee, treasury, nil
	}
	fee, err := f.baseFee.Get()
	if err != nil {
		return nil, common.Address{}, err
	}
	return fee, treasury, nil
}
