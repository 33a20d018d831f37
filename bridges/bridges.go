// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bridges defines the external collaborators the protocol talks to:
// the cross-chain message endpoint, the deposit-token bridge gateway and the
// DEX surfaces. Loopback implementations wire both sides of the bridge inside
// a single process for tests and the solo playground.
package bridges

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Endpoint is a LayerZero style message endpoint. Send charges the supplied
// native value against the estimated fee and delivers payload to the receiver
// registered on the destination chain.
type Endpoint interface {
	Send(sender common.Address, dstChainID uint16, dstReceiver common.Address, payload []byte, zroPaymentAddress common.Address, adapterParams []byte, value *big.Int) error
	EstimateFees(dstChainID uint16, dstReceiver common.Address, payload []byte, adapterParams []byte) (*big.Int, error)
}

// Receiver is the destination side of an Endpoint. srcAndReceiver is the
// packed path (source sender followed by destination receiver) and nonce is
// the transport's per-source sequence number.
type Receiver interface {
	LzReceive(caller common.Address, srcChainID uint16, srcAndReceiver []byte, nonce uint64, payload []byte) error
}

// BridgeGateway moves deposit tokens across the bridge, returning an opaque
// receipt identifying the transfer.
type BridgeGateway interface {
	OutboundTransfer(caller, token, to common.Address, amount *big.Int, gasLimit, maxFeePerGas uint64, data []byte) ([]byte, error)
}

// ExactInputSingleParams mirrors the Uniswap V3 router's single-hop swap input.
type ExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               uint32
	Recipient         common.Address
	Deadline          uint64
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

type SwapRouter interface {
	ExactInputSingle(caller common.Address, params ExactInputSingleParams) (*big.Int, error)
}

type IncreaseLiquidityParams struct {
	TokenID        uint64
	Amount0Desired *big.Int
	Amount1Desired *big.Int
	Amount0Min     *big.Int
	Amount1Min     *big.Int
}

type DecreaseLiquidityParams struct {
	TokenID    uint64
	Liquidity  *big.Int
	Amount0Min *big.Int
	Amount1Min *big.Int
}

type CollectParams struct {
	TokenID    uint64
	Recipient  common.Address
	Amount0Max *big.Int
	Amount1Max *big.Int
}

// PositionManager mirrors the Uniswap V3 nonfungible position manager surface
// the token receiver manages liquidity through.
type PositionManager interface {
	Positions(tokenID uint64) (token0, token1 common.Address, err error)
	IncreaseLiquidity(caller common.Address, params IncreaseLiquidityParams) (liquidity, amount0, amount1 *big.Int, err error)
	DecreaseLiquidity(caller common.Address, params DecreaseLiquidityParams) (amount0, amount1 *big.Int, err error)
	Collect(caller common.Address, params CollectParams) (amount0, amount1 *big.Int, err error)
	SafeTransferFrom(caller, from, to common.Address, tokenID uint64) error
}

var mintMessageArgs abi.Arguments

func init() {
	addressType, _ := abi.NewType("address", "", nil)
	uint256Type, _ := abi.NewType("uint256", "", nil)
	mintMessageArgs = abi.Arguments{
		{Name: "receiver", Type: addressType},
		{Name: "amount", Type: uint256Type},
	}
}

// PackMintMessage abi-encodes the (receiver, amount) reward mint payload.
func PackMintMessage(receiver common.Address, amount *big.Int) ([]byte, error) {
	payload, err := mintMessageArgs.Pack(receiver, amount)
	if err != nil {
		return nil, errors.Wrap(err, "pack mint message")
	}
	return payload, nil
}

// UnpackMintMessage decodes a payload produced by PackMintMessage.
func UnpackMintMessage(payload []byte) (common.Address, *big.Int, error) {
	values, err := mintMessageArgs.Unpack(payload)
	if err != nil {
		return common.Address{}, nil, errors.Wrap(err, "unpack mint message")
	}
	receiver, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, nil, errors.New("unpack mint message: bad receiver")
	}
	amount, ok := values[1].(*big.Int)
	if !ok {
		return common.Address{}, nil, errors.New("unpack mint message: bad amount")
	}
	return receiver, amount, nil
}

// PackPath builds the LayerZero trusted-remote path: source sender followed by
// the destination receiver.
func PackPath(srcSender, dstReceiver common.Address) []byte {
	path := make([]byte, 0, 2*common.AddressLength)
	path = append(path, srcSender.Bytes()...)
	return append(path, dstReceiver.Bytes()...)
}

// PathSender extracts the source sender from a packed path.
func PathSender(path []byte) (common.Address, error) {
	if len(path) != 2*common.AddressLength {
		return common.Address{}, errors.New("bad path length")
	}
	return common.BytesToAddress(path[:common.AddressLength]), nil
}
