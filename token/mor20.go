// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/morlabs/distribution/reverts"
	"github.com/morlabs/distribution/solidity"
	"github.com/morlabs/distribution/state"
)

var slotMinters = common.Hash(crypto.Keccak256Hash([]byte("mor20-minters")))

var (
	errInvalidMinter = reverts.New("MOR20: invalid minter")
	errInvalidCaller = reverts.New("MOR20: invalid caller")
)

// MOR20 is the reward token: a plain ledger whose mint is gated to an
// owner-maintained minter set. The L2 message receiver is the canonical
// minter.
type MOR20 struct {
	*Ledger
	ownable *solidity.Ownable
	minters *solidity.Mapping[common.Address, bool]
}

func NewMOR20(addr common.Address, st *state.State) *MOR20 {
	context := solidity.NewContext(addr, st)
	return &MOR20{
		Ledger:  NewLedger(addr, st),
		ownable: solidity.NewOwnable(context),
		minters: solidity.NewMapping[common.Address, bool](context, slotMinters),
	}
}

// Init sets metadata, the owner and the initial minter.
func (m *MOR20) Init(name, symbol string, owner, minter common.Address) error {
	if minter == (common.Address{}) {
		return errInvalidMinter
	}
	m.Ledger.Init(name, symbol)
	m.ownable.Init(owner)
	return m.minters.Set(minter, true)
}

func (m *MOR20) IsMinter(addr common.Address) (bool, error) {
	return m.minters.Get(addr)
}

// UpdateMinter grants or revokes mint permission. Owner only.
func (m *MOR20) UpdateMinter(caller, minter common.Address, isMinter bool) error {
	if err := m.ownable.Check(caller); err != nil {
		return err
	}
	return m.minters.Set(minter, isMinter)
}

// Mint creates amount for to. Minters only.
func (m *MOR20) Mint(caller, to common.Address, amount *big.Int) error {
	ok, err := m.minters.Get(caller)
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidCaller
	}
	return m.mint(to, amount)
}

// Burn destroys the caller's own tokens.
func (m *MOR20) Burn(caller common.Address, amount *big.Int) error {
	return m.burn(caller, amount)
}

// BurnFrom destroys tokens from another account against its allowance.
func (m *MOR20) BurnFrom(caller, from common.Address, amount *big.Int) error {
	if err := m.spendAllowance(from, caller, amount); err != nil {
		return err
	}
	return m.burn(from, amount)
}
