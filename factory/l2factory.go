// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/morlabs/distribution/bridges"
	"github.com/morlabs/distribution/l2receiver"
	"github.com/morlabs/distribution/l2tokenreceiver"
	"github.com/morlabs/distribution/protocol"
	"github.com/morlabs/distribution/reverts"
	"github.com/morlabs/distribution/state"
	"github.com/morlabs/distribution/token"
)

var (
	errInvalidL2LZEndpoint  = reverts.New("L2F: invalid LZ endpoint")
	errInvalidL2OFTEndpoint = reverts.New("L2F: invalid LZ OFT endpoint")
	errInvalidUniRouter     = reverts.New("L2F: invalid UNI router")
	errInvalidNPM           = reverts.New("L2F: invalid NPM")
	errInvalidL2ChainID     = reverts.New("L2F: invalid chain ID")
)

// L2Params are the per-deployment inputs to L2Factory.Deploy.
type L2Params struct {
	ProtocolName  string
	MorName       string
	MorSymbol     string
	FirstSwapFee  uint32
	SecondSwapFee uint32
}

// L2Deployment is the wired contract set created on L2.
type L2Deployment struct {
	L2MessageReceiver *l2receiver.L2MessageReceiver
	L2TokenReceiver   *l2tokenreceiver.L2TokenReceiver
	MOR               *token.MOR20
}

// L2Factory deploys the L2 counterpart set: the message receiver, the token
// receiver and the MOR reward token, wired to the predicted L1 sender.
type L2Factory struct {
	*BaseFactory

	lzEndpoint      bridges.Endpoint
	lzEndpointAddr  common.Address
	l1ChainID       uint16
	swapRouter      bridges.SwapRouter
	swapRouterAddr  common.Address
	positionManager bridges.PositionManager
	positionMgrAddr common.Address
	wrappedToken    *token.WrappedDepositToken
	l1Factory       common.Address
}

func NewL2Factory(addr common.Address, st *state.State, beacon *Beacon) *L2Factory {
	return &L2Factory{BaseFactory: NewBaseFactory(addr, st, beacon)}
}

// SetLzExternalDeps points the factory at the message endpoint, its address
// on this chain and the L1 chain messages come from. Owner only.
func (f *L2Factory) SetLzExternalDeps(caller common.Address, endpoint bridges.Endpoint, endpointAddr common.Address, l1ChainID uint16) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	if endpoint == nil || endpointAddr == (common.Address{}) {
		return errInvalidL2LZEndpoint
	}
	if l1ChainID == 0 {
		return errInvalidL2ChainID
	}
	f.lzEndpoint = endpoint
	f.lzEndpointAddr = endpointAddr
	f.l1ChainID = l1ChainID
	return nil
}

// SetUniswapExternalDeps points the factory at the swap router and position
// manager. Owner only.
func (f *L2Factory) SetUniswapExternalDeps(caller common.Address, router bridges.SwapRouter, routerAddr common.Address, manager bridges.PositionManager, managerAddr common.Address) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	if router == nil {
		return errInvalidUniRouter
	}
	if manager == nil {
		return errInvalidNPM
	}
	f.swapRouter = router
	f.swapRouterAddr = routerAddr
	f.positionManager = manager
	f.positionMgrAddr = managerAddr
	return nil
}

// SetWrappedToken binds the bridged deposit-token wrapper arriving on this
// chain. Owner only.
func (f *L2Factory) SetWrappedToken(caller common.Address, wrappedToken *token.WrappedDepositToken) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	if wrappedToken == nil {
		return errInvalidL2OFTEndpoint
	}
	f.wrappedToken = wrappedToken
	return nil
}

// SetL1Factory records the address of the counterpart factory on L1. Owner
// only.
func (f *L2Factory) SetL1Factory(caller, l1Factory common.Address) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	f.l1Factory = l1Factory
	return nil
}

// MorTokenAddress derives the deterministic address of the reward token for a
// deployment claim.
func (f *L2Factory) MorTokenAddress(deployer common.Address, protocolName string) common.Address {
	salt := crypto.Keccak256Hash(protocol.Salt(deployer, protocolName, protocol.PoolL2MessageReceiver).Bytes(), []byte("mor20"))
	return protocol.CreateProxyAddress(f.addr, salt)
}

// Deploy creates the L2 contract set for (caller, name) at deterministic
// addresses, trusted-wired to the predicted L1 sender, with the caller as
// owner everywhere.
func (f *L2Factory) Deploy(caller common.Address, params L2Params) (deployment *L2Deployment, err error) {
	err = f.state.Transact(func() error {
		receiverProxy, err := f.BaseFactory.Deploy(caller, params.ProtocolName, protocol.PoolL2MessageReceiver)
		if err != nil {
			return err
		}
		tokenReceiverProxy, err := f.BaseFactory.Deploy(caller, params.ProtocolName, protocol.PoolL2TokenReceiver)
		if err != nil {
			return err
		}

		receiver := l2receiver.New(receiverProxy.Address(), f.state)
		mor := token.NewMOR20(f.MorTokenAddress(caller, params.ProtocolName), f.state)
		if err := mor.Init(params.MorName, params.MorSymbol, caller, receiver.Address()); err != nil {
			return err
		}

		l1Sender := protocol.CreateProxyAddress(f.l1Factory, protocol.Salt(caller, params.ProtocolName, protocol.PoolL1Sender))
		if err := receiver.Init(caller, l2receiver.Config{
			Gateway:       f.lzEndpointAddr,
			Sender:        l1Sender,
			SenderChainID: f.l1ChainID,
		}, mor); err != nil {
			return err
		}

		tokenReceiver := l2tokenreceiver.New(tokenReceiverProxy.Address(), f.state)
		if err := tokenReceiver.Init(caller, f.swapRouter, f.swapRouterAddr, f.positionManager, f.positionMgrAddr,
			l2tokenreceiver.SwapParams{
				TokenIn:  f.wrappedToken.Address(),
				TokenOut: mor.Address(),
				Fee:      params.FirstSwapFee,
			},
			l2tokenreceiver.SwapParams{
				TokenIn:  mor.Address(),
				TokenOut: f.wrappedToken.Address(),
				Fee:      params.SecondSwapFee,
			}); err != nil {
			return err
		}
		tokenReceiver.RegisterToken(f.wrappedToken)
		tokenReceiver.RegisterToken(mor)

		deployment = &L2Deployment{L2MessageReceiver: receiver, L2TokenReceiver: tokenReceiver, MOR: mor}
		return nil
	})
	return
}

// PredictL2Addresses returns the (message receiver, token receiver) addresses
// a deployment by deployer under protocolName would claim.
func (f *L2Factory) PredictL2Addresses(deployer common.Address, protocolName string) (common.Address, common.Address) {
	addrs := f.PredictAddresses(deployer, protocolName, protocol.PoolL2MessageReceiver, protocol.PoolL2TokenReceiver)
	return addrs[0], addrs[1]
}
