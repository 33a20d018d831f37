// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/morlabs/distribution/bridges"
	"github.com/morlabs/distribution/distribution"
	"github.com/morlabs/distribution/feeconfig"
	"github.com/morlabs/distribution/l1sender"
	"github.com/morlabs/distribution/protocol"
	"github.com/morlabs/distribution/reverts"
	"github.com/morlabs/distribution/state"
	"github.com/morlabs/distribution/token"
)

var (
	errInvalidLZEndpoint  = reverts.New("L1F: invalid LZ endpoint")
	errInvalidArbEndpoint = reverts.New("L1F: invalid ARB endpoint")
	errInvalidL1ChainID   = reverts.New("L1F: invalid chain ID")
	errInvalidFeeConfig   = reverts.New("L1F: invalid fee config")
	errInvalidWToken      = reverts.New("L1F: invalid wToken address")
)

// L1Params are the per-deployment inputs to L1Factory.Deploy.
type L1Params struct {
	ProtocolName string
	Pool         *distribution.Pool
	Now          uint64
}

// L1Deployment is the wired pair of contracts created on L1.
type L1Deployment struct {
	Distribution *distribution.Distribution
	L1Sender     *l1sender.L1Sender
}

// L1Factory deploys Distribution + L1Sender pairs, wiring them to the
// deterministic addresses of their L2 counterparts.
type L1Factory struct {
	*BaseFactory

	lzEndpoint   bridges.Endpoint
	l2ChainID    uint16
	arbGateway   bridges.BridgeGateway
	feeConfig    *feeconfig.FeeConfig
	depositToken *token.DepositToken
	wrappedToken *token.WrappedDepositToken
	l2Factory    common.Address
}

func NewL1Factory(addr common.Address, st *state.State, beacon *Beacon) *L1Factory {
	return &L1Factory{BaseFactory: NewBaseFactory(addr, st, beacon)}
}

// SetLzExternalDeps points the factory at the message endpoint and the L2
// chain it delivers to. Owner only.
func (f *L1Factory) SetLzExternalDeps(caller common.Address, endpoint bridges.Endpoint, l2ChainID uint16) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	if endpoint == nil {
		return errInvalidLZEndpoint
	}
	if l2ChainID == 0 {
		return errInvalidL1ChainID
	}
	f.lzEndpoint = endpoint
	f.l2ChainID = l2ChainID
	return nil
}

// SetArbExternalDeps points the factory at the deposit-token bridge gateway.
// Owner only.
func (f *L1Factory) SetArbExternalDeps(caller common.Address, gateway bridges.BridgeGateway) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	if gateway == nil {
		return errInvalidArbEndpoint
	}
	f.arbGateway = gateway
	return nil
}

// SetFeeConfig binds the protocol fee lookup. Owner only.
func (f *L1Factory) SetFeeConfig(caller common.Address, feeConfig *feeconfig.FeeConfig) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	if feeConfig == nil {
		return errInvalidFeeConfig
	}
	f.feeConfig = feeConfig
	return nil
}

// SetDepositTokens binds the rebasing deposit token and its bridge wrapper.
// Owner only.
func (f *L1Factory) SetDepositTokens(caller common.Address, depositToken *token.DepositToken, wrappedToken *token.WrappedDepositToken) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	if wrappedToken == nil {
		return errInvalidWToken
	}
	f.depositToken = depositToken
	f.wrappedToken = wrappedToken
	return nil
}

// SetL2Factory records the address of the counterpart factory on L2, used to
// predict the receiver addresses a deployment will talk to. Owner only.
func (f *L1Factory) SetL2Factory(caller, l2Factory common.Address) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	f.l2Factory = l2Factory
	return nil
}

// Deploy creates the Distribution + L1Sender pair for (caller, name) at their
// deterministic addresses, pre-wired to the predicted L2 receivers and with
// the caller as owner of both. The caller funds the first pool separately.
func (f *L1Factory) Deploy(caller common.Address, params L1Params) (deployment *L1Deployment, err error) {
	err = f.state.Transact(func() error {
		distProxy, err := f.BaseFactory.Deploy(caller, params.ProtocolName, protocol.PoolDistribution)
		if err != nil {
			return err
		}
		senderProxy, err := f.BaseFactory.Deploy(caller, params.ProtocolName, protocol.PoolL1Sender)
		if err != nil {
			return err
		}

		l2Receiver := protocol.CreateProxyAddress(f.l2Factory, protocol.Salt(caller, params.ProtocolName, protocol.PoolL2MessageReceiver))
		l2TokenReceiver := protocol.CreateProxyAddress(f.l2Factory, protocol.Salt(caller, params.ProtocolName, protocol.PoolL2TokenReceiver))

		dist := distribution.New(distProxy.Address(), f.state)
		sender := l1sender.New(senderProxy.Address(), f.state)

		if err := sender.Init(caller, dist.Address(),
			l1sender.RewardTokenConfig{
				Gateway:         f.lzEndpoint,
				Receiver:        l2Receiver,
				ReceiverChainID: f.l2ChainID,
			},
			l1sender.DepositTokenConfig{
				Token:        f.depositToken,
				WrappedToken: f.wrappedToken,
				Gateway:      f.arbGateway,
				Receiver:     l2TokenReceiver,
			}); err != nil {
			return err
		}
		if err := dist.Init(caller, f.depositToken, sender, f.feeConfig); err != nil {
			return err
		}
		if params.Pool != nil {
			if _, err := dist.CreatePool(caller, params.Pool, params.Now); err != nil {
				return err
			}
		}
		deployment = &L1Deployment{Distribution: dist, L1Sender: sender}
		return nil
	})
	return
}

// PredictL1Addresses returns the (distribution, l1sender) addresses a
// deployment by deployer under protocolName would claim.
func (f *L1Factory) PredictL1Addresses(deployer common.Address, protocolName string) (common.Address, common.Address) {
	addrs := f.PredictAddresses(deployer, protocolName, protocol.PoolDistribution, protocol.PoolL1Sender)
	return addrs[0], addrs[1]
}
