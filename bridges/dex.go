// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bridges

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// ERC20 is the token surface the in-process DEX moves balances through.
type ERC20 interface {
	Address() common.Address
	BalanceOf(addr common.Address) (*big.Int, error)
	Transfer(caller, to common.Address, amount *big.Int) error
	TransferFrom(caller, from, to common.Address, amount *big.Int) error
}

// FixedRateRouter swaps registered token pairs at a constant rate. It holds
// its output-side inventory at its own address, so tests and the playground
// pre-fund it. Reverts mirror the Uniswap router's reason strings.
type FixedRateRouter struct {
	addr    common.Address
	tokens  map[common.Address]ERC20
	rateNum *big.Int
	rateDen *big.Int
	now     func() uint64
}

func NewFixedRateRouter(addr common.Address, rateNum, rateDen *big.Int, now func() uint64) *FixedRateRouter {
	return &FixedRateRouter{
		addr:    addr,
		tokens:  make(map[common.Address]ERC20),
		rateNum: new(big.Int).Set(rateNum),
		rateDen: new(big.Int).Set(rateDen),
		now:     now,
	}
}

func (r *FixedRateRouter) Address() common.Address {
	return r.addr
}

func (r *FixedRateRouter) RegisterToken(t ERC20) {
	r.tokens[t.Address()] = t
}

func (r *FixedRateRouter) ExactInputSingle(caller common.Address, params ExactInputSingleParams) (*big.Int, error) {
	if params.Deadline < r.now() {
		return nil, errors.New("Transaction too old")
	}
	tokenIn, ok := r.tokens[params.TokenIn]
	if !ok {
		return nil, errors.New("unknown tokenIn")
	}
	tokenOut, ok := r.tokens[params.TokenOut]
	if !ok {
		return nil, errors.New("unknown tokenOut")
	}

	amountOut := new(big.Int).Mul(params.AmountIn, r.rateNum)
	amountOut.Div(amountOut, r.rateDen)
	if params.AmountOutMinimum != nil && amountOut.Cmp(params.AmountOutMinimum) < 0 {
		return nil, errors.New("Too little received")
	}

	if err := tokenIn.TransferFrom(r.addr, caller, r.addr, params.AmountIn); err != nil {
		return nil, err
	}
	if err := tokenOut.Transfer(r.addr, params.Recipient, amountOut); err != nil {
		return nil, err
	}
	return amountOut, nil
}

type position struct {
	owner     common.Address
	token0    ERC20
	token1    ERC20
	liquidity *big.Int
	bal0      *big.Int
	bal1      *big.Int
	owed0     *big.Int
	owed1     *big.Int
}

// InMemoryPositionManager is a minimal nonfungible position manager. Each
// position tracks its pooled balances; decreasing liquidity moves the
// proportional share into the owed buckets and Collect pays them out.
type InMemoryPositionManager struct {
	addr      common.Address
	positions map[uint64]*position
	nextID    uint64
}

func NewInMemoryPositionManager(addr common.Address) *InMemoryPositionManager {
	return &InMemoryPositionManager{addr: addr, positions: make(map[uint64]*position), nextID: 1}
}

func (m *InMemoryPositionManager) Address() common.Address {
	return m.addr
}

// MintPosition opens an empty position for owner over (token0, token1).
func (m *InMemoryPositionManager) MintPosition(owner common.Address, token0, token1 ERC20) uint64 {
	id := m.nextID
	m.nextID++
	m.positions[id] = &position{
		owner:     owner,
		token0:    token0,
		token1:    token1,
		liquidity: new(big.Int),
		bal0:      new(big.Int),
		bal1:      new(big.Int),
		owed0:     new(big.Int),
		owed1:     new(big.Int),
	}
	return id
}

func (m *InMemoryPositionManager) position(tokenID uint64) (*position, error) {
	p, ok := m.positions[tokenID]
	if !ok {
		return nil, errors.New("Invalid token ID")
	}
	return p, nil
}

func (m *InMemoryPositionManager) Positions(tokenID uint64) (common.Address, common.Address, error) {
	p, err := m.position(tokenID)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return p.token0.Address(), p.token1.Address(), nil
}

func (m *InMemoryPositionManager) IncreaseLiquidity(caller common.Address, params IncreaseLiquidityParams) (*big.Int, *big.Int, *big.Int, error) {
	p, err := m.position(params.TokenID)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := p.token0.TransferFrom(m.addr, caller, m.addr, params.Amount0Desired); err != nil {
		return nil, nil, nil, err
	}
	if err := p.token1.TransferFrom(m.addr, caller, m.addr, params.Amount1Desired); err != nil {
		return nil, nil, nil, err
	}
	p.bal0.Add(p.bal0, params.Amount0Desired)
	p.bal1.Add(p.bal1, params.Amount1Desired)

	liquidity := new(big.Int).Add(params.Amount0Desired, params.Amount1Desired)
	p.liquidity.Add(p.liquidity, liquidity)
	return liquidity, params.Amount0Desired, params.Amount1Desired, nil
}

func (m *InMemoryPositionManager) DecreaseLiquidity(caller common.Address, params DecreaseLiquidityParams) (*big.Int, *big.Int, error) {
	p, err := m.position(params.TokenID)
	if err != nil {
		return nil, nil, err
	}
	if caller != p.owner {
		return nil, nil, errors.New("Not approved")
	}
	if p.liquidity.Sign() == 0 || params.Liquidity.Cmp(p.liquidity) > 0 {
		return nil, nil, errors.New("Invalid liquidity")
	}

	amount0 := new(big.Int).Mul(p.bal0, params.Liquidity)
	amount0.Div(amount0, p.liquidity)
	amount1 := new(big.Int).Mul(p.bal1, params.Liquidity)
	amount1.Div(amount1, p.liquidity)
	if (params.Amount0Min != nil && amount0.Cmp(params.Amount0Min) < 0) ||
		(params.Amount1Min != nil && amount1.Cmp(params.Amount1Min) < 0) {
		return nil, nil, errors.New("Price slippage check")
	}

	p.bal0.Sub(p.bal0, amount0)
	p.bal1.Sub(p.bal1, amount1)
	p.owed0.Add(p.owed0, amount0)
	p.owed1.Add(p.owed1, amount1)
	p.liquidity.Sub(p.liquidity, params.Liquidity)
	return amount0, amount1, nil
}

func (m *InMemoryPositionManager) Collect(caller common.Address, params CollectParams) (*big.Int, *big.Int, error) {
	p, err := m.position(params.TokenID)
	if err != nil {
		return nil, nil, err
	}
	if caller != p.owner {
		return nil, nil, errors.New("Not approved")
	}

	amount0 := bigMin(p.owed0, params.Amount0Max)
	amount1 := bigMin(p.owed1, params.Amount1Max)
	if amount0.Sign() > 0 {
		if err := p.token0.Transfer(m.addr, params.Recipient, amount0); err != nil {
			return nil, nil, err
		}
		p.owed0.Sub(p.owed0, amount0)
	}
	if amount1.Sign() > 0 {
		if err := p.token1.Transfer(m.addr, params.Recipient, amount1); err != nil {
			return nil, nil, err
		}
		p.owed1.Sub(p.owed1, amount1)
	}
	return amount0, amount1, nil
}

func (m *InMemoryPositionManager) SafeTransferFrom(caller, from, to common.Address, tokenID uint64) error {
	p, err := m.position(tokenID)
	if err != nil {
		return err
	}
	if caller != p.owner || from != p.owner {
		return errors.New("Not approved")
	}
	p.owner = to
	return nil
}

func bigMin(a, b *big.Int) *big.Int {
	if b == nil || a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
