// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package l1sender implements the L1 side of the cross-chain flow: it sends
// reward mint messages through the message endpoint and bridges accumulated
// deposit tokens to the L2 token receiver.
package l1sender

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/morlabs/distribution/bridges"
	"github.com/morlabs/distribution/log"
	"github.com/morlabs/distribution/reverts"
	"github.com/morlabs/distribution/solidity"
	"github.com/morlabs/distribution/state"
	"github.com/morlabs/distribution/token"
)

var logger = log.WithContext("pkg", "l1sender")

var (
	errInvalidSender       = reverts.New("L1S: invalid sender")
	errInvalidDistribution = reverts.New("L1S: invalid distribution address")
)

// RewardTokenConfig describes how reward mint messages reach the L2 message
// receiver.
type RewardTokenConfig struct {
	Gateway           bridges.Endpoint
	Receiver          common.Address
	ReceiverChainID   uint16
	ZroPaymentAddress common.Address
	AdapterParams     []byte
}

// DepositTokenConfig describes how bridged deposit tokens reach the L2 token
// receiver. Token is the rebasing deposit token, WrappedToken its non-rebasing
// wrapper actually carried over the bridge.
type DepositTokenConfig struct {
	Token        *token.DepositToken
	WrappedToken *token.WrappedDepositToken
	Gateway      bridges.BridgeGateway
	Receiver     common.Address
}

// L1Sender relays messages on behalf of the distribution contract. Only the
// configured distribution address may trigger sends.
type L1Sender struct {
	addr          common.Address
	ownable       *solidity.Ownable
	distribution  *solidity.Address
	rewardConfig  RewardTokenConfig
	depositConfig DepositTokenConfig
}

var slotDistribution = solidity.SlotPosition("l1-sender-distribution")

func New(addr common.Address, st *state.State) *L1Sender {
	context := solidity.NewContext(addr, st)
	return &L1Sender{
		addr:         addr,
		ownable:      solidity.NewOwnable(context),
		distribution: solidity.NewAddress(context, slotDistribution),
	}
}

func (s *L1Sender) Init(owner, distribution common.Address, rewardConfig RewardTokenConfig, depositConfig DepositTokenConfig) error {
	if distribution == (common.Address{}) {
		return errInvalidDistribution
	}
	s.ownable.Init(owner)
	s.distribution.Set(distribution)
	s.rewardConfig = rewardConfig
	s.depositConfig = depositConfig
	return nil
}

func (s *L1Sender) Address() common.Address {
	return s.addr
}

func (s *L1Sender) Distribution() (common.Address, error) {
	return s.distribution.Get()
}

func (s *L1Sender) checkDistribution(caller common.Address) error {
	distribution, err := s.distribution.Get()
	if err != nil {
		return err
	}
	if caller != distribution {
		return errInvalidSender
	}
	return nil
}

// SetRewardTokenLZParams updates the payment and adapter parameters used for
// reward messages. Owner only.
func (s *L1Sender) SetRewardTokenLZParams(caller, zroPaymentAddress common.Address, adapterParams []byte) error {
	if err := s.ownable.Check(caller); err != nil {
		return err
	}
	s.rewardConfig.ZroPaymentAddress = zroPaymentAddress
	s.rewardConfig.AdapterParams = adapterParams
	return nil
}

// SendMintMessage relays a (receiver, amount) reward mint to the L2 message
// receiver, paying the endpoint fee out of value.
func (s *L1Sender) SendMintMessage(caller, receiver common.Address, amount, value *big.Int) error {
	if err := s.checkDistribution(caller); err != nil {
		return err
	}
	payload, err := bridges.PackMintMessage(receiver, amount)
	if err != nil {
		return err
	}
	cfg := &s.rewardConfig
	if err := cfg.Gateway.Send(s.addr, cfg.ReceiverChainID, cfg.Receiver, payload, cfg.ZroPaymentAddress, cfg.AdapterParams, value); err != nil {
		return err
	}
	logger.Info("sent mint message", "receiver", receiver, "amount", amount)
	return nil
}

// SendDepositToken wraps the sender's whole deposit-token balance and bridges
// it to the configured L2 receiver, returning the bridge receipt.
func (s *L1Sender) SendDepositToken(caller common.Address, gasLimit, maxFeePerGas uint64, maxSubmissionCost *big.Int) ([]byte, error) {
	if err := s.checkDistribution(caller); err != nil {
		return nil, err
	}
	cfg := &s.depositConfig

	amount, err := cfg.Token.BalanceOf(s.addr)
	if err != nil {
		return nil, err
	}
	wrapped, err := cfg.WrappedToken.Wrap(s.addr, amount)
	if err != nil {
		return nil, err
	}

	data := common.BigToHash(maxSubmissionCost).Bytes()
	receipt, err := cfg.Gateway.OutboundTransfer(s.addr, cfg.WrappedToken.Address(), cfg.Receiver, wrapped, gasLimit, maxFeePerGas, data)
	if err != nil {
		return nil, err
	}
	logger.Info("bridged deposit tokens", "amount", amount, "wrapped", wrapped, "receiver", cfg.Receiver)
	return receipt, nil
}
