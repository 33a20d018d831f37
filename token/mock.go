// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/morlabs/distribution/state"
)

// ERC20Mock is a ledger with an ungated mint, for tests and the solo
// playground environment.
type ERC20Mock struct {
	*Ledger
}

func NewERC20Mock(addr common.Address, st *state.State, name, symbol string) *ERC20Mock {
	ledger := NewLedger(addr, st)
	ledger.Init(name, symbol)
	return &ERC20Mock{Ledger: ledger}
}

func (m *ERC20Mock) Mint(to common.Address, amount *big.Int) error {
	return m.mint(to, amount)
}
