// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package l2tokenreceiver manages the protocol-owned liquidity on L2: it
// receives bridged deposit tokens and swaps or pools them through the DEX.
package l2tokenreceiver

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/morlabs/distribution/bridges"
	"github.com/morlabs/distribution/log"
	"github.com/morlabs/distribution/reverts"
	"github.com/morlabs/distribution/solidity"
	"github.com/morlabs/distribution/state"
)

var logger = log.WithContext("pkg", "l2tokenreceiver")

var (
	errInvalidTokenIn  = reverts.New("L2TR: invalid tokenIn")
	errInvalidTokenOut = reverts.New("L2TR: invalid tokenOut")
)

// ERC20 extends the DEX token surface with approvals, which the receiver
// grants before the router or position manager pulls funds.
type ERC20 interface {
	bridges.ERC20
	Approve(caller, spender common.Address, amount *big.Int) error
}

// SwapParams pins one swap leg: the pair, the pool fee tier and the price
// limit passed through to the router.
type SwapParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               uint32
	SqrtPriceLimitX96 *big.Int
}

func (p *SwapParams) validate() error {
	if p.TokenIn == (common.Address{}) {
		return errInvalidTokenIn
	}
	if p.TokenOut == (common.Address{}) {
		return errInvalidTokenOut
	}
	return nil
}

// L2TokenReceiver is the owner-managed DEX arm of the protocol.
type L2TokenReceiver struct {
	addr        common.Address
	ownable     *solidity.Ownable
	router      bridges.SwapRouter
	routerAddr  common.Address
	manager     bridges.PositionManager
	managerAddr common.Address

	tokens       map[common.Address]ERC20
	firstParams  SwapParams
	secondParams SwapParams
}

func New(addr common.Address, st *state.State) *L2TokenReceiver {
	return &L2TokenReceiver{
		addr:    addr,
		ownable: solidity.NewOwnable(solidity.NewContext(addr, st)),
		tokens:  make(map[common.Address]ERC20),
	}
}

func (r *L2TokenReceiver) Init(owner common.Address, router bridges.SwapRouter, routerAddr common.Address, manager bridges.PositionManager, managerAddr common.Address, firstParams, secondParams SwapParams) error {
	if err := firstParams.validate(); err != nil {
		return err
	}
	if err := secondParams.validate(); err != nil {
		return err
	}
	r.ownable.Init(owner)
	r.router = router
	r.routerAddr = routerAddr
	r.manager = manager
	r.managerAddr = managerAddr
	r.firstParams = firstParams
	r.secondParams = secondParams
	return nil
}

func (r *L2TokenReceiver) Address() common.Address {
	return r.addr
}

// RegisterToken makes a token usable in swaps, liquidity ops and withdrawals.
func (r *L2TokenReceiver) RegisterToken(t ERC20) {
	r.tokens[t.Address()] = t
}

func (r *L2TokenReceiver) token(addr common.Address) (ERC20, error) {
	t, ok := r.tokens[addr]
	if !ok {
		return nil, errors.Errorf("unregistered token %s", addr)
	}
	return t, nil
}

func (r *L2TokenReceiver) params(useFirst bool) *SwapParams {
	if useFirst {
		return &r.firstParams
	}
	return &r.secondParams
}

// SwapParamsFor returns the configured leg.
func (r *L2TokenReceiver) SwapParamsFor(useFirst bool) SwapParams {
	return *r.params(useFirst)
}

// EditParams replaces one swap leg. Owner only.
func (r *L2TokenReceiver) EditParams(caller common.Address, newParams SwapParams, useFirst bool) error {
	if err := r.ownable.Check(caller); err != nil {
		return err
	}
	if err := newParams.validate(); err != nil {
		return err
	}
	*r.params(useFirst) = newParams
	return nil
}

// Swap trades amountIn along the selected leg, keeping the proceeds at the
// receiver. Owner only.
func (r *L2TokenReceiver) Swap(caller common.Address, amountIn, amountOutMinimum *big.Int, deadline uint64, useFirst bool) (*big.Int, error) {
	if err := r.ownable.Check(caller); err != nil {
		return nil, err
	}
	params := r.params(useFirst)
	tokenIn, err := r.token(params.TokenIn)
	if err != nil {
		return nil, err
	}
	if err := tokenIn.Approve(r.addr, r.routerAddr, amountIn); err != nil {
		return nil, err
	}
	amountOut, err := r.router.ExactInputSingle(r.addr, bridges.ExactInputSingleParams{
		TokenIn:           params.TokenIn,
		TokenOut:          params.TokenOut,
		Fee:               params.Fee,
		Recipient:         r.addr,
		Deadline:          deadline,
		AmountIn:          amountIn,
		AmountOutMinimum:  amountOutMinimum,
		SqrtPriceLimitX96: params.SqrtPriceLimitX96,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("swapped", "tokenIn", params.TokenIn, "tokenOut", params.TokenOut, "amountIn", amountIn, "amountOut", amountOut)
	return amountOut, nil
}

// IncreaseLiquidityCurrentRange adds liquidity to a held position. Owner only.
func (r *L2TokenReceiver) IncreaseLiquidityCurrentRange(caller common.Address, tokenID uint64, amount0Add, amount1Add, amount0Min, amount1Min *big.Int) (*big.Int, *big.Int, *big.Int, error) {
	if err := r.ownable.Check(caller); err != nil {
		return nil, nil, nil, err
	}
	token0Addr, token1Addr, err := r.manager.Positions(tokenID)
	if err != nil {
		return nil, nil, nil, err
	}
	token0, err := r.token(token0Addr)
	if err != nil {
		return nil, nil, nil, err
	}
	token1, err := r.token(token1Addr)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := token0.Approve(r.addr, r.managerAddr, amount0Add); err != nil {
		return nil, nil, nil, err
	}
	if err := token1.Approve(r.addr, r.managerAddr, amount1Add); err != nil {
		return nil, nil, nil, err
	}
	liquidity, amount0, amount1, err := r.manager.IncreaseLiquidity(r.addr, bridges.IncreaseLiquidityParams{
		TokenID:        tokenID,
		Amount0Desired: amount0Add,
		Amount1Desired: amount1Add,
		Amount0Min:     amount0Min,
		Amount1Min:     amount1Min,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("increased liquidity", "tokenID", tokenID, "liquidity", liquidity)
	return liquidity, amount0, amount1, nil
}

// DecreaseLiquidityCurrentRange removes liquidity and collects the released
// amounts back to the receiver. Owner only.
func (r *L2TokenReceiver) DecreaseLiquidityCurrentRange(caller common.Address, tokenID uint64, liquidity, amount0Min, amount1Min *big.Int) (*big.Int, *big.Int, error) {
	if err := r.ownable.Check(caller); err != nil {
		return nil, nil, err
	}
	amount0, amount1, err := r.manager.DecreaseLiquidity(r.addr, bridges.DecreaseLiquidityParams{
		TokenID:    tokenID,
		Liquidity:  liquidity,
		Amount0Min: amount0Min,
		Amount1Min: amount1Min,
	})
	if err != nil {
		return nil, nil, err
	}
	if _, _, err := r.manager.Collect(r.addr, bridges.CollectParams{
		TokenID:    tokenID,
		Recipient:  r.addr,
		Amount0Max: amount0,
		Amount1Max: amount1,
	}); err != nil {
		return nil, nil, err
	}
	logger.Info("decreased liquidity", "tokenID", tokenID, "amount0", amount0, "amount1", amount1)
	return amount0, amount1, nil
}

// CollectFees sweeps accrued position fees to the receiver. Callable by
// anyone.
func (r *L2TokenReceiver) CollectFees(tokenID uint64) (*big.Int, *big.Int, error) {
	return r.manager.Collect(r.addr, bridges.CollectParams{
		TokenID:    tokenID,
		Recipient:  r.addr,
		Amount0Max: new(big.Int).Lsh(big.NewInt(1), 128),
		Amount1Max: new(big.Int).Lsh(big.NewInt(1), 128),
	})
}

// WithdrawToken moves held tokens out. Owner only.
func (r *L2TokenReceiver) WithdrawToken(caller, recipient, tokenAddr common.Address, amount *big.Int) error {
	if err := r.ownable.Check(caller); err != nil {
		return err
	}
	t, err := r.token(tokenAddr)
	if err != nil {
		return err
	}
	return t.Transfer(r.addr, recipient, amount)
}

// WithdrawTokenID hands a held position over. Owner only.
func (r *L2TokenReceiver) WithdrawTokenID(caller, recipient common.Address, tokenID uint64) error {
	if err := r.ownable.Check(caller); err != nil {
		return err
	}
	return r.manager.SafeTransferFrom(r.addr, r.addr, recipient, tokenID)
}
