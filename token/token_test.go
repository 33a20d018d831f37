// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morlabs/distribution/state"
)

var (
	owner  = common.BytesToAddress([]byte("owner"))
	minter = common.BytesToAddress([]byte("minter"))
	alice  = common.BytesToAddress([]byte("alice"))
	bob    = common.BytesToAddress([]byte("bob"))
)

func newMOR20(t *testing.T) *MOR20 {
	mor := NewMOR20(common.BytesToAddress([]byte("mor20")), state.New())
	require.NoError(t, mor.Init("MOR", "MOR", owner, minter))
	return mor
}

func TestMOR20Init(t *testing.T) {
	mor := newMOR20(t)

	name, err := mor.Name()
	require.NoError(t, err)
	assert.Equal(t, "MOR", name)

	ok, err := mor.IsMinter(minter)
	require.NoError(t, err)
	assert.True(t, ok)

	bad := NewMOR20(common.BytesToAddress([]byte("mor20-2")), state.New())
	assert.EqualError(t, bad.Init("MOR", "MOR", owner, common.Address{}), "MOR20: invalid minter")
}

func TestMOR20Mint(t *testing.T) {
	mor := newMOR20(t)

	require.NoError(t, mor.Mint(minter, alice, big.NewInt(100)))
	bal, err := mor.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal.Int64())

	supply, err := mor.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, int64(100), supply.Int64())

	assert.EqualError(t, mor.Mint(alice, alice, big.NewInt(1)), "MOR20: invalid caller")
}

func TestMOR20UpdateMinter(t *testing.T) {
	mor := newMOR20(t)

	assert.EqualError(t, mor.UpdateMinter(alice, alice, true), "Ownable: caller is not the owner")

	require.NoError(t, mor.UpdateMinter(owner, alice, true))
	require.NoError(t, mor.Mint(alice, bob, big.NewInt(5)))

	require.NoError(t, mor.UpdateMinter(owner, alice, false))
	assert.EqualError(t, mor.Mint(alice, bob, big.NewInt(5)), "MOR20: invalid caller")
}

func TestMOR20TransferAndBurn(t *testing.T) {
	mor := newMOR20(t)
	require.NoError(t, mor.Mint(minter, alice, big.NewInt(100)))

	require.NoError(t, mor.Transfer(alice, bob, big.NewInt(40)))
	assert.EqualError(t, mor.Transfer(alice, bob, big.NewInt(100)), "ERC20: transfer amount exceeds balance")

	require.NoError(t, mor.Burn(bob, big.NewInt(10)))
	bal, _ := mor.BalanceOf(bob)
	assert.Equal(t, int64(30), bal.Int64())

	assert.EqualError(t, mor.BurnFrom(bob, alice, big.NewInt(10)), "ERC20: insufficient allowance")
	require.NoError(t, mor.Approve(alice, bob, big.NewInt(10)))
	require.NoError(t, mor.BurnFrom(bob, alice, big.NewInt(10)))

	supply, _ := mor.TotalSupply()
	assert.Equal(t, int64(80), supply.Int64())
}

func TestDepositTokenRebase(t *testing.T) {
	st := state.New()
	steth := NewDepositToken(common.BytesToAddress([]byte("steth")), st)

	require.NoError(t, steth.Mint(alice, big.NewInt(100)))
	require.NoError(t, steth.Mint(bob, big.NewInt(300)))

	// yield accrues to holders pro rata, without transfers
	require.NoError(t, steth.AddYield(big.NewInt(400)))

	balA, _ := steth.BalanceOf(alice)
	balB, _ := steth.BalanceOf(bob)
	assert.Equal(t, int64(200), balA.Int64())
	assert.Equal(t, int64(600), balB.Int64())

	supply, _ := steth.TotalSupply()
	assert.Equal(t, int64(800), supply.Int64())
}

func TestDepositTokenTransfer(t *testing.T) {
	st := state.New()
	steth := NewDepositToken(common.BytesToAddress([]byte("steth")), st)
	require.NoError(t, steth.Mint(alice, big.NewInt(100)))
	require.NoError(t, steth.AddYield(big.NewInt(100)))

	// alice now holds 200
	require.NoError(t, steth.Transfer(alice, bob, big.NewInt(50)))
	balA, _ := steth.BalanceOf(alice)
	balB, _ := steth.BalanceOf(bob)
	assert.Equal(t, int64(150), balA.Int64())
	assert.Equal(t, int64(50), balB.Int64())

	assert.EqualError(t, steth.Transfer(bob, alice, big.NewInt(60)), "ERC20: transfer amount exceeds balance")

	require.NoError(t, steth.Approve(alice, bob, big.NewInt(30)))
	require.NoError(t, steth.TransferFrom(bob, alice, bob, big.NewInt(30)))
	assert.EqualError(t, steth.TransferFrom(bob, alice, bob, big.NewInt(30)), "ERC20: insufficient allowance")
}

func TestWrapUnwrap(t *testing.T) {
	st := state.New()
	steth := NewDepositToken(common.BytesToAddress([]byte("steth")), st)
	wsteth := NewWrappedDepositToken(common.BytesToAddress([]byte("wsteth")), st, steth)

	require.NoError(t, steth.Mint(alice, big.NewInt(100)))
	require.NoError(t, steth.AddYield(big.NewInt(100))) // 1 share = 2 tokens

	wrapped, err := wsteth.Wrap(alice, big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, int64(50), wrapped.Int64())

	wBal, _ := wsteth.BalanceOf(alice)
	assert.Equal(t, int64(50), wBal.Int64())
	sBal, _ := steth.BalanceOf(alice)
	assert.Equal(t, int64(100), sBal.Int64())

	// wrapped balance is immune to further rebasing, unwrap picks up the gain
	require.NoError(t, steth.AddYield(big.NewInt(200)))
	released, err := wsteth.Unwrap(alice, big.NewInt(50))
	require.NoError(t, err)
	assert.Equal(t, int64(200), released.Int64())
}
