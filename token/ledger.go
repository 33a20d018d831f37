// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the native token ledgers the protocol moves value
// through: the plain ERC20-style ledger, the rebasing deposit token with its
// non-rebasing wrapper, and the MOR20 reward token.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/morlabs/distribution/reverts"
	"github.com/morlabs/distribution/solidity"
	"github.com/morlabs/distribution/state"
)

var (
	slotBalances    = common.Hash(crypto.Keccak256Hash([]byte("token-balances")))
	slotAllowances  = common.Hash(crypto.Keccak256Hash([]byte("token-allowances")))
	slotTotalSupply = common.Hash(crypto.Keccak256Hash([]byte("token-total-supply")))
	slotName        = common.Hash(crypto.Keccak256Hash([]byte("token-name")))
	slotSymbol      = common.Hash(crypto.Keccak256Hash([]byte("token-symbol")))
)

var (
	errInsufficientBalance   = reverts.New("ERC20: transfer amount exceeds balance")
	errInsufficientAllowance = reverts.New("ERC20: insufficient allowance")
	errBurnExceedsBalance    = reverts.New("ERC20: burn amount exceeds balance")
)

type allowanceKey struct {
	owner   common.Address
	spender common.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

// Ledger is a minimal ERC20-style balance/allowance ledger bound to a token
// contract address.
type Ledger struct {
	context     *solidity.Context
	balances    *solidity.Mapping[common.Address, *big.Int]
	allowances  *solidity.Mapping[allowanceKey, *big.Int]
	totalSupply *solidity.Uint256
	name        *solidity.String
	symbol      *solidity.String
}

func NewLedger(addr common.Address, st *state.State) *Ledger {
	context := solidity.NewContext(addr, st)
	return &Ledger{
		context:     context,
		balances:    solidity.NewMapping[common.Address, *big.Int](context, slotBalances),
		allowances:  solidity.NewMapping[allowanceKey, *big.Int](context, slotAllowances),
		totalSupply: solidity.NewUint256(context, slotTotalSupply),
		name:        solidity.NewString(context, slotName),
		symbol:      solidity.NewString(context, slotSymbol),
	}
}

// Init sets the token metadata.
func (l *Ledger) Init(name, symbol string) {
	l.name.Set(name)
	l.symbol.Set(symbol)
}

func (l *Ledger) Address() common.Address { return l.context.Address() }

func (l *Ledger) Name() (string, error) { return l.name.Get() }

func (l *Ledger) Symbol() (string, error) { return l.symbol.Get() }

func (l *Ledger) TotalSupply() (*big.Int, error) {
	return l.totalSupply.Get()
}

func (l *Ledger) BalanceOf(addr common.Address) (*big.Int, error) {
	bal, err := l.balances.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal, nil
}

func (l *Ledger) Allowance(owner, spender common.Address) (*big.Int, error) {
	allowance, err := l.allowances.Get(allowanceKey{owner, spender})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allowance")
	}
	if allowance == nil {
		return new(big.Int), nil
	}
	return allowance, nil
}

func (l *Ledger) Approve(caller, spender common.Address, amount *big.Int) error {
	return l.allowances.Set(allowanceKey{caller, spender}, amount)
}

func (l *Ledger) Transfer(caller, to common.Address, amount *big.Int) error {
	return l.move(caller, to, amount)
}

func (l *Ledger) TransferFrom(caller, from, to common.Address, amount *big.Int) error {
	if err := l.spendAllowance(from, caller, amount); err != nil {
		return err
	}
	return l.move(from, to, amount)
}

func (l *Ledger) spendAllowance(owner, spender common.Address, amount *big.Int) error {
	allowance, err := l.Allowance(owner, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return errInsufficientAllowance
	}
	return l.allowances.Set(allowanceKey{owner, spender}, new(big.Int).Sub(allowance, amount))
}

func (l *Ledger) move(from, to common.Address, amount *big.Int) error {
	fromBal, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return errInsufficientBalance
	}
	toBal, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := l.balances.Set(from, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	return l.balances.Set(to, new(big.Int).Add(toBal, amount))
}

func (l *Ledger) mint(to common.Address, amount *big.Int) error {
	bal, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := l.balances.Set(to, new(big.Int).Add(bal, amount)); err != nil {
		return err
	}
	return l.totalSupply.Add(amount)
}

func (l *Ledger) burn(from common.Address, amount *big.Int) error {
	bal, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return errBurnExceedsBalance
	}
	if err := l.balances.Set(from, new(big.Int).Sub(bal, amount)); err != nil {
		return err
	}
	return l.totalSupply.Sub(amount)
}
