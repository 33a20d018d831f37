// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package l2tokenreceiver

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morlabs/distribution/bridges"
	"github.com/morlabs/distribution/state"
	"github.com/morlabs/distribution/token"
)

var (
	owner    = common.BytesToAddress([]byte("owner"))
	stranger = common.BytesToAddress([]byte("stranger"))
)

type env struct {
	receiver *L2TokenReceiver
	wst      *token.ERC20Mock
	mor      *token.ERC20Mock
	router   *bridges.FixedRateRouter
	manager  *bridges.InMemoryPositionManager
	now      uint64
}

func newEnv(t *testing.T) *env {
	st := state.New()
	e := &env{now: 1000}

	e.wst = token.NewERC20Mock(common.BytesToAddress([]byte("wstETH")), st, "Wrapped Deposit", "wstETH")
	e.mor = token.NewERC20Mock(common.BytesToAddress([]byte("MOR")), st, "MOR", "MOR")

	routerAddr := common.BytesToAddress([]byte("router"))
	e.router = bridges.NewFixedRateRouter(routerAddr, big.NewInt(3), big.NewInt(1), func() uint64 { return e.now })
	e.router.RegisterToken(e.wst)
	e.router.RegisterToken(e.mor)

	managerAddr := common.BytesToAddress([]byte("npm"))
	e.manager = bridges.NewInMemoryPositionManager(managerAddr)

	e.receiver = New(common.BytesToAddress([]byte("l2-token-receiver")), st)
	require.NoError(t, e.receiver.Init(owner, e.router, routerAddr, e.manager, managerAddr,
		SwapParams{TokenIn: e.wst.Address(), TokenOut: e.mor.Address(), Fee: 3000},
		SwapParams{TokenIn: e.mor.Address(), TokenOut: e.wst.Address(), Fee: 500},
	))
	e.receiver.RegisterToken(e.wst)
	e.receiver.RegisterToken(e.mor)

	// bridged inventory plus router liquidity
	require.NoError(t, e.wst.Mint(e.receiver.Address(), big.NewInt(1000)))
	require.NoError(t, e.mor.Mint(routerAddr, big.NewInt(100000)))
	return e
}

func TestInitValidation(t *testing.T) {
	st := state.New()
	r := New(common.BytesToAddress([]byte("r")), st)

	good := SwapParams{TokenIn: common.BytesToAddress([]byte("a")), TokenOut: common.BytesToAddress([]byte("b"))}
	err := r.Init(owner, nil, common.Address{}, nil, common.Address{}, SwapParams{TokenOut: good.TokenOut}, good)
	assert.EqualError(t, err, "L2TR: invalid tokenIn")

	err = r.Init(owner, nil, common.Address{}, nil, common.Address{}, good, SwapParams{TokenIn: good.TokenIn})
	assert.EqualError(t, err, "L2TR: invalid tokenOut")
}

func TestEditParams(t *testing.T) {
	e := newEnv(t)

	next := SwapParams{TokenIn: e.mor.Address(), TokenOut: e.wst.Address(), Fee: 10000}
	err := e.receiver.EditParams(stranger, next, true)
	assert.EqualError(t, err, "Ownable: caller is not the owner")

	err = e.receiver.EditParams(owner, SwapParams{TokenOut: e.wst.Address()}, true)
	assert.EqualError(t, err, "L2TR: invalid tokenIn")

	err = e.receiver.EditParams(owner, SwapParams{TokenIn: e.mor.Address()}, true)
	assert.EqualError(t, err, "L2TR: invalid tokenOut")

	require.NoError(t, e.receiver.EditParams(owner, next, true))
	assert.Equal(t, next, e.receiver.SwapParamsFor(true))
}

func TestSwap(t *testing.T) {
	e := newEnv(t)

	_, err := e.receiver.Swap(stranger, big.NewInt(100), big.NewInt(0), e.now+60, true)
	assert.EqualError(t, err, "Ownable: caller is not the owner")

	_, err = e.receiver.Swap(owner, big.NewInt(100), big.NewInt(0), e.now-1, true)
	assert.EqualError(t, err, "Transaction too old")

	amountOut, err := e.receiver.Swap(owner, big.NewInt(100), big.NewInt(300), e.now+60, true)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), amountOut)

	morBalance, err := e.mor.BalanceOf(e.receiver.Address())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), morBalance)

	wstBalance, err := e.wst.BalanceOf(e.receiver.Address())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(900), wstBalance)
}

func TestLiquidityLifecycle(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.mor.Mint(e.receiver.Address(), big.NewInt(1000)))

	id := e.manager.MintPosition(e.receiver.Address(), e.wst, e.mor)

	_, _, _, err := e.receiver.IncreaseLiquidityCurrentRange(stranger, id, big.NewInt(1), big.NewInt(1), nil, nil)
	assert.EqualError(t, err, "Ownable: caller is not the owner")

	liquidity, amount0, amount1, err := e.receiver.IncreaseLiquidityCurrentRange(owner, id,
		big.NewInt(400), big.NewInt(600), big.NewInt(0), big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), liquidity)
	assert.Equal(t, big.NewInt(400), amount0)
	assert.Equal(t, big.NewInt(600), amount1)

	amount0, amount1, err = e.receiver.DecreaseLiquidityCurrentRange(owner, id,
		big.NewInt(500), big.NewInt(0), big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), amount0)
	assert.Equal(t, big.NewInt(300), amount1)

	// released amounts are collected straight back to the receiver
	wstBalance, err := e.wst.BalanceOf(e.receiver.Address())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(800), wstBalance)
}

func TestWithdraw(t *testing.T) {
	e := newEnv(t)
	recipient := common.BytesToAddress([]byte("recipient"))

	err := e.receiver.WithdrawToken(stranger, recipient, e.wst.Address(), big.NewInt(100))
	assert.EqualError(t, err, "Ownable: caller is not the owner")

	require.NoError(t, e.receiver.WithdrawToken(owner, recipient, e.wst.Address(), big.NewInt(100)))

	balance, err := e.wst.BalanceOf(recipient)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), balance)

	id := e.manager.MintPosition(e.receiver.Address(), e.wst, e.mor)
	err = e.receiver.WithdrawTokenID(stranger, recipient, id)
	assert.EqualError(t, err, "Ownable: caller is not the owner")
	require.NoError(t, e.receiver.WithdrawTokenID(owner, recipient, id))

	// the position no longer belongs to the receiver
	_, _, err = e.receiver.DecreaseLiquidityCurrentRange(owner, id, big.NewInt(1), nil, nil)
	assert.EqualError(t, err, "Not approved")
}
