// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/morlabs/distribution/solidity"
	"github.com/morlabs/distribution/state"
)

var (
	slotShares      = common.Hash(crypto.Keccak256Hash([]byte("deposit-shares")))
	slotTotalShares = common.Hash(crypto.Keccak256Hash([]byte("deposit-total-shares")))
	slotTotalPooled = common.Hash(crypto.Keccak256Hash([]byte("deposit-total-pooled")))
)

// DepositToken is a rebasing, interest-bearing ledger in the stETH mould.
// Balances are backed by shares against a growing pooled total, so holder
// balances increase without any transfer. That passive growth is exactly what
// the distribution skims as overplus.
type DepositToken struct {
	context     *solidity.Context
	shares      *solidity.Mapping[common.Address, *big.Int]
	allowances  *solidity.Mapping[allowanceKey, *big.Int]
	totalShares *solidity.Uint256
	totalPooled *solidity.Uint256
}

func NewDepositToken(addr common.Address, st *state.State) *DepositToken {
	context := solidity.NewContext(addr, st)
	return &DepositToken{
		context:     context,
		shares:      solidity.NewMapping[common.Address, *big.Int](context, slotShares),
		allowances:  solidity.NewMapping[allowanceKey, *big.Int](context, slotAllowances),
		totalShares: solidity.NewUint256(context, slotTotalShares),
		totalPooled: solidity.NewUint256(context, slotTotalPooled),
	}
}

func (d *DepositToken) Address() common.Address { return d.context.Address() }

func (d *DepositToken) sharesOf(addr common.Address) (*big.Int, error) {
	shares, err := d.shares.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get shares")
	}
	if shares == nil {
		return new(big.Int), nil
	}
	return shares, nil
}

// SharesByPooledAmount converts a token amount to shares at the current rate.
func (d *DepositToken) SharesByPooledAmount(amount *big.Int) (*big.Int, error) {
	totalShares, err := d.totalShares.Get()
	if err != nil {
		return nil, err
	}
	totalPooled, err := d.totalPooled.Get()
	if err != nil {
		return nil, err
	}
	if totalPooled.Sign() == 0 {
		return new(big.Int).Set(amount), nil
	}
	out := new(big.Int).Mul(amount, totalShares)
	return out.Quo(out, totalPooled), nil
}

// PooledAmountByShares converts shares to a token amount at the current rate.
func (d *DepositToken) PooledAmountByShares(shares *big.Int) (*big.Int, error) {
	totalShares, err := d.totalShares.Get()
	if err != nil {
		return nil, err
	}
	totalPooled, err := d.totalPooled.Get()
	if err != nil {
		return nil, err
	}
	if totalShares.Sign() == 0 {
		return new(big.Int).Set(shares), nil
	}
	out := new(big.Int).Mul(shares, totalPooled)
	return out.Quo(out, totalShares), nil
}

func (d *DepositToken) BalanceOf(addr common.Address) (*big.Int, error) {
	shares, err := d.sharesOf(addr)
	if err != nil {
		return nil, err
	}
	return d.PooledAmountByShares(shares)
}

func (d *DepositToken) TotalSupply() (*big.Int, error) {
	return d.totalPooled.Get()
}

// Mint credits amount to addr, expanding both shares and the pooled total.
func (d *DepositToken) Mint(to common.Address, amount *big.Int) error {
	newShares, err := d.SharesByPooledAmount(amount)
	if err != nil {
		return err
	}
	holderShares, err := d.sharesOf(to)
	if err != nil {
		return err
	}
	if err := d.shares.Set(to, new(big.Int).Add(holderShares, newShares)); err != nil {
		return err
	}
	if err := d.totalShares.Add(newShares); err != nil {
		return err
	}
	return d.totalPooled.Add(amount)
}

// AddYield grows the pooled total without minting shares: every holder's
// balance rises proportionally. This models the external interest accrual.
func (d *DepositToken) AddYield(amount *big.Int) error {
	return d.totalPooled.Add(amount)
}

func (d *DepositToken) Allowance(owner, spender common.Address) (*big.Int, error) {
	allowance, err := d.allowances.Get(allowanceKey{owner, spender})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allowance")
	}
	if allowance == nil {
		return new(big.Int), nil
	}
	return allowance, nil
}

func (d *DepositToken) Approve(caller, spender common.Address, amount *big.Int) error {
	return d.allowances.Set(allowanceKey{caller, spender}, amount)
}

func (d *DepositToken) Transfer(caller, to common.Address, amount *big.Int) error {
	return d.move(caller, to, amount)
}

func (d *DepositToken) TransferFrom(caller, from, to common.Address, amount *big.Int) error {
	allowance, err := d.Allowance(from, caller)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return errInsufficientAllowance
	}
	if err := d.allowances.Set(allowanceKey{from, caller}, new(big.Int).Sub(allowance, amount)); err != nil {
		return err
	}
	return d.move(from, to, amount)
}

func (d *DepositToken) move(from, to common.Address, amount *big.Int) error {
	moveShares, err := d.SharesByPooledAmount(amount)
	if err != nil {
		return err
	}
	fromShares, err := d.sharesOf(from)
	if err != nil {
		return err
	}
	if fromShares.Cmp(moveShares) < 0 {
		return errInsufficientBalance
	}
	toShares, err := d.sharesOf(to)
	if err != nil {
		return err
	}
	if err := d.shares.Set(from, new(big.Int).Sub(fromShares, moveShares)); err != nil {
		return err
	}
	return d.shares.Set(to, new(big.Int).Add(toShares, moveShares))
}

// WrappedDepositToken is the non-rebasing wrapper (wstETH style): wrapping
// locks deposit tokens and mints a share-denominated balance, so the wrapped
// amount is stable while the underlying keeps rebasing.
type WrappedDepositToken struct {
	*Ledger
	underlying *DepositToken
}

func NewWrappedDepositToken(addr common.Address, st *state.State, underlying *DepositToken) *WrappedDepositToken {
	return &WrappedDepositToken{
		Ledger:     NewLedger(addr, st),
		underlying: underlying,
	}
}

// Wrap locks the caller's deposit tokens and mints the wrapped equivalent.
// Returns the wrapped amount.
func (w *WrappedDepositToken) Wrap(caller common.Address, amount *big.Int) (*big.Int, error) {
	wrapped, err := w.underlying.SharesByPooledAmount(amount)
	if err != nil {
		return nil, err
	}
	if err := w.underlying.Transfer(caller, w.Address(), amount); err != nil {
		return nil, err
	}
	if err := w.mint(caller, wrapped); err != nil {
		return nil, err
	}
	return wrapped, nil
}

// Unwrap burns wrapped tokens and releases the underlying at the current
// rebase rate. Returns the released amount.
func (w *WrappedDepositToken) Unwrap(caller common.Address, wrapped *big.Int) (*big.Int, error) {
	amount, err := w.underlying.PooledAmountByShares(wrapped)
	if err != nil {
		return nil, err
	}
	if err := w.burn(caller, wrapped); err != nil {
		return nil, err
	}
	if err := w.underlying.Transfer(w.Address(), caller, amount); err != nil {
		return nil, err
	}
	return amount, nil
}
