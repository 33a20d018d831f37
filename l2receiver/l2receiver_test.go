// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package l2receiver

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morlabs/distribution/bridges"
	"github.com/morlabs/distribution/state"
	"github.com/morlabs/distribution/token"
)

const senderChainID = uint16(101)

var (
	owner    = common.BytesToAddress([]byte("owner"))
	gateway  = common.BytesToAddress([]byte("gateway"))
	l1Sender = common.BytesToAddress([]byte("l1-sender"))
	staker   = common.BytesToAddress([]byte("staker"))
	stranger = common.BytesToAddress([]byte("stranger"))
)

type env struct {
	receiver *L2MessageReceiver
	reward   *token.MOR20
}

func newEnv(t *testing.T, minter common.Address) *env {
	st := state.New()

	receiver := New(common.BytesToAddress([]byte("l2-receiver")), st)
	if minter == (common.Address{}) {
		minter = receiver.Address()
	}
	reward := token.NewMOR20(common.BytesToAddress([]byte("MOR")), st)
	require.NoError(t, reward.Init("MOR", "MOR", owner, minter))

	require.NoError(t, receiver.Init(owner, Config{
		Gateway:       gateway,
		Sender:        l1Sender,
		SenderChainID: senderChainID,
	}, reward))
	return &env{receiver: receiver, reward: reward}
}

func mintPayload(t *testing.T, to common.Address, amount int64) []byte {
	payload, err := bridges.PackMintMessage(to, big.NewInt(amount))
	require.NoError(t, err)
	return payload
}

func path(e *env) []byte {
	return bridges.PackPath(l1Sender, e.receiver.Address())
}

func TestLzReceive(t *testing.T) {
	e := newEnv(t, common.Address{})
	payload := mintPayload(t, staker, 700)

	err := e.receiver.LzReceive(stranger, senderChainID, path(e), 1, payload)
	assert.EqualError(t, err, "L2MR: invalid gateway")

	require.NoError(t, e.receiver.LzReceive(gateway, senderChainID, path(e), 1, payload))

	balance, err := e.reward.BalanceOf(staker)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(700), balance)

	stored, err := e.receiver.FailedMessages(senderChainID, path(e), 1)
	require.NoError(t, err)
	assert.Equal(t, common.Hash{}, stored)
}

func TestLzReceiveStoresFailures(t *testing.T) {
	e := newEnv(t, common.Address{})
	payload := mintPayload(t, staker, 700)

	// wrong source chain: swallowed, recorded, nothing minted
	require.NoError(t, e.receiver.LzReceive(gateway, senderChainID+1, path(e), 1, payload))

	balance, err := e.reward.BalanceOf(staker)
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())

	stored, err := e.receiver.FailedMessages(senderChainID+1, path(e), 1)
	require.NoError(t, err)
	assert.Equal(t, common.Hash(crypto.Keccak256Hash(payload)), stored)

	// wrong source sender
	badPath := bridges.PackPath(stranger, e.receiver.Address())
	require.NoError(t, e.receiver.LzReceive(gateway, senderChainID, badPath, 1, payload))

	stored, err = e.receiver.FailedMessages(senderChainID, badPath, 1)
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, stored)
}

func TestNonblockingLzReceive(t *testing.T) {
	e := newEnv(t, common.Address{})
	payload := mintPayload(t, staker, 700)

	err := e.receiver.NonblockingLzReceive(stranger, senderChainID, path(e), payload)
	assert.EqualError(t, err, "L2MR: invalid caller")

	err = e.receiver.NonblockingLzReceive(e.receiver.Address(), senderChainID+1, path(e), payload)
	assert.EqualError(t, err, "L2MR: invalid sender chain ID")

	badPath := bridges.PackPath(stranger, e.receiver.Address())
	err = e.receiver.NonblockingLzReceive(e.receiver.Address(), senderChainID, badPath, payload)
	assert.EqualError(t, err, "L2MR: invalid sender address")
}

func TestRetryMessage(t *testing.T) {
	// the receiver is not a minter yet, so handling fails past validation
	e := newEnv(t, stranger)
	payload := mintPayload(t, staker, 700)

	require.NoError(t, e.receiver.LzReceive(gateway, senderChainID, path(e), 1, payload))

	stored, err := e.receiver.FailedMessages(senderChainID, path(e), 1)
	require.NoError(t, err)
	assert.Equal(t, common.Hash(crypto.Keccak256Hash(payload)), stored)

	// no record under another nonce
	err = e.receiver.RetryMessage(senderChainID, path(e), 2, payload)
	assert.EqualError(t, err, "L2MR: no stored message")

	// tampered payload is rejected
	tampered := mintPayload(t, staker, 9999)
	err = e.receiver.RetryMessage(senderChainID, path(e), 1, tampered)
	assert.EqualError(t, err, "L2MR: invalid payload")

	// the cause is still there: retry fails and keeps the record
	err = e.receiver.RetryMessage(senderChainID, path(e), 1, payload)
	assert.EqualError(t, err, "MOR20: invalid caller")

	stored, err = e.receiver.FailedMessages(senderChainID, path(e), 1)
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, stored)

	// grant mint rights and replay
	require.NoError(t, e.reward.UpdateMinter(owner, e.receiver.Address(), true))
	require.NoError(t, e.receiver.RetryMessage(senderChainID, path(e), 1, payload))

	balance, err := e.reward.BalanceOf(staker)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(700), balance)

	// executed at most once
	err = e.receiver.RetryMessage(senderChainID, path(e), 1, payload)
	assert.EqualError(t, err, "L2MR: no stored message")
}

func TestSetLzSender(t *testing.T) {
	e := newEnv(t, common.Address{})

	err := e.receiver.SetLzSender(stranger, l1Sender)
	assert.EqualError(t, err, "Ownable: caller is not the owner")

	err = e.receiver.SetLzSender(owner, common.Address{})
	assert.EqualError(t, err, "L2MR: invalid sender")

	next := common.BytesToAddress([]byte("next-sender"))
	require.NoError(t, e.receiver.SetLzSender(owner, next))

	// messages from the old sender are no longer accepted inline
	payload := mintPayload(t, staker, 10)
	require.NoError(t, e.receiver.LzReceive(gateway, senderChainID, path(e), 1, payload))

	balance, err := e.reward.BalanceOf(staker)
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())

	nextPath := bridges.PackPath(next, e.receiver.Address())
	require.NoError(t, e.receiver.LzReceive(gateway, senderChainID, nextPath, 2, payload))

	balance, err = e.reward.BalanceOf(staker)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), balance)
}
