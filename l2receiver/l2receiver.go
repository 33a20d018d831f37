// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package l2receiver implements the L2 side of the reward flow: it accepts
// mint messages from the configured L1 sender, mints the reward token and
// keeps a retryable record of messages whose handling failed.
package l2receiver

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/morlabs/distribution/bridges"
	"github.com/morlabs/distribution/log"
	"github.com/morlabs/distribution/metrics"
	"github.com/morlabs/distribution/reverts"
	"github.com/morlabs/distribution/solidity"
	"github.com/morlabs/distribution/state"
	"github.com/morlabs/distribution/token"
)

var logger = log.WithContext("pkg", "l2receiver")

var (
	metricMessagesMinted = metrics.Counter("l2receiver_minted_count")
	metricMessagesFailed = metrics.Counter("l2receiver_failed_count")
	metricMessageRetries = metrics.Counter("l2receiver_retried_count")
)

var (
	errInvalidGateway     = reverts.New("L2MR: invalid gateway")
	errInvalidCaller      = reverts.New("L2MR: invalid caller")
	errInvalidSender      = reverts.New("L2MR: invalid sender")
	errInvalidSenderChain = reverts.New("L2MR: invalid sender chain ID")
	errInvalidSenderAddr  = reverts.New("L2MR: invalid sender address")
	errNoStoredMessage    = reverts.New("L2MR: no stored message")
	errInvalidPayload     = reverts.New("L2MR: invalid payload")
)

// Config pins the transport endpoint and the only remote allowed to mint.
type Config struct {
	Gateway       common.Address
	Sender        common.Address
	SenderChainID uint16
}

// messageKey identifies a received message by source chain, packed path and
// transport nonce.
type messageKey struct {
	chainID        uint16
	srcAndReceiver []byte
	nonce          uint64
}

func (k messageKey) Bytes() []byte {
	b := make([]byte, 0, 10+len(k.srcAndReceiver))
	b = binary.BigEndian.AppendUint16(b, k.chainID)
	b = append(b, k.srcAndReceiver...)
	return binary.BigEndian.AppendUint64(b, k.nonce)
}

var (
	slotConfigSender = solidity.SlotPosition("l2-receiver-sender")
	slotFailed       = solidity.SlotPosition("l2-receiver-failed-messages")
)

// L2MessageReceiver mints reward tokens for messages arriving from L1.
// Handling failures never bounce back to the transport: the payload hash is
// stored and the message can be replayed with RetryMessage.
type L2MessageReceiver struct {
	addr    common.Address
	state   *state.State
	ownable *solidity.Ownable
	sender  *solidity.Address
	failed  *solidity.Mapping[messageKey, common.Hash]

	config Config
	reward *token.MOR20
}

func New(addr common.Address, st *state.State) *L2MessageReceiver {
	context := solidity.NewContext(addr, st)
	return &L2MessageReceiver{
		addr:    addr,
		state:   st,
		ownable: solidity.NewOwnable(context),
		sender:  solidity.NewAddress(context, slotConfigSender),
		failed:  solidity.NewMapping[messageKey, common.Hash](context, slotFailed),
	}
}

func (r *L2MessageReceiver) Init(owner common.Address, config Config, reward *token.MOR20) error {
	r.ownable.Init(owner)
	r.config = config
	r.reward = reward
	r.sender.Set(config.Sender)
	return nil
}

func (r *L2MessageReceiver) Address() common.Address {
	return r.addr
}

// SetLzSender repoints the trusted L1 sender. Owner only.
func (r *L2MessageReceiver) SetLzSender(caller, sender common.Address) error {
	if err := r.ownable.Check(caller); err != nil {
		return err
	}
	if sender == (common.Address{}) {
		return errInvalidSender
	}
	r.config.Sender = sender
	r.sender.Set(sender)
	return nil
}

// FailedMessages returns the stored payload hash for a failed message, or the
// zero hash when none is recorded.
func (r *L2MessageReceiver) FailedMessages(chainID uint16, srcAndReceiver []byte, nonce uint64) (common.Hash, error) {
	return r.failed.Get(messageKey{chainID, srcAndReceiver, nonce})
}

// LzReceive is the transport entry point. Only the gateway may call it, and a
// failing inner handler is swallowed after recording the payload hash.
func (r *L2MessageReceiver) LzReceive(caller common.Address, srcChainID uint16, srcAndReceiver []byte, nonce uint64, payload []byte) error {
	if caller != r.config.Gateway {
		return errInvalidGateway
	}
	if err := r.state.Transact(func() error {
		return r.NonblockingLzReceive(r.addr, srcChainID, srcAndReceiver, payload)
	}); err != nil {
		key := messageKey{srcChainID, srcAndReceiver, nonce}
		if storeErr := r.failed.Set(key, crypto.Keccak256Hash(payload)); storeErr != nil {
			return storeErr
		}
		metricMessagesFailed.Add(1)
		logger.Warn("message handling failed", "srcChainID", srcChainID, "nonce", nonce, "err", err)
		return nil
	}
	metricMessagesMinted.Add(1)
	return nil
}

// NonblockingLzReceive validates the message origin and mints the reward.
// Self-callable only.
func (r *L2MessageReceiver) NonblockingLzReceive(caller common.Address, srcChainID uint16, srcAndReceiver []byte, payload []byte) error {
	if caller != r.addr {
		return errInvalidCaller
	}
	if srcChainID != r.config.SenderChainID {
		return errInvalidSenderChain
	}
	sender, err := bridges.PathSender(srcAndReceiver)
	if err != nil || sender != r.config.Sender {
		return errInvalidSenderAddr
	}
	receiver, amount, err := bridges.UnpackMintMessage(payload)
	if err != nil {
		return err
	}
	if err := r.reward.Mint(r.addr, receiver, amount); err != nil {
		return err
	}
	logger.Info("minted reward", "receiver", receiver, "amount", amount)
	return nil
}

// RetryMessage replays a previously failed message. A successful replay
// clears the record, so a message can be executed at most once.
func (r *L2MessageReceiver) RetryMessage(chainID uint16, srcAndReceiver []byte, nonce uint64, payload []byte) error {
	key := messageKey{chainID, srcAndReceiver, nonce}
	stored, err := r.failed.Get(key)
	if err != nil {
		return err
	}
	if stored == (common.Hash{}) {
		return errNoStoredMessage
	}
	if crypto.Keccak256Hash(payload) != stored {
		return errInvalidPayload
	}
	if err := r.state.Transact(func() error {
		return r.NonblockingLzReceive(r.addr, chainID, srcAndReceiver, payload)
	}); err != nil {
		return err
	}
	r.failed.Clear(key)
	metricMessageRetries.Add(1)
	logger.Info("retried message", "chainID", chainID, "nonce", nonce)
	return nil
}
