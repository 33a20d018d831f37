// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morlabs/distribution/reverts"
	"github.com/morlabs/distribution/state"
)

type entry struct {
	Amount *big.Int
	Flag   bool
}

func newTestContext() *Context {
	return NewContext(common.BytesToAddress([]byte("contract")), state.New())
}

func TestMappingRoundTrip(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[common.Address, *entry](ctx, crypto.Keccak256Hash([]byte("entries")))

	key := common.BytesToAddress([]byte("user"))

	got, err := m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Amount)

	require.NoError(t, m.Set(key, &entry{Amount: big.NewInt(500), Flag: true}))
	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, int64(500), got.Amount.Int64())
	assert.True(t, got.Flag)

	has, err := m.Has(key)
	require.NoError(t, err)
	assert.True(t, has)

	m.Clear(key)
	has, err = m.Has(key)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMappingDistinctKeys(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[Uint64Key, *big.Int](ctx, crypto.Keccak256Hash([]byte("pools")))

	require.NoError(t, m.Set(Uint64Key(0), big.NewInt(1)))
	require.NoError(t, m.Set(Uint64Key(1), big.NewInt(2)))

	a, err := m.Get(Uint64Key(0))
	require.NoError(t, err)
	b, err := m.Get(Uint64Key(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.Int64())
	assert.Equal(t, int64(2), b.Int64())
}

func TestSlots(t *testing.T) {
	ctx := newTestContext()

	addrSlot := NewAddress(ctx, crypto.Keccak256Hash([]byte("addr")))
	addrSlot.Set(common.BytesToAddress([]byte("xyz")))
	addr, err := addrSlot.Get()
	require.NoError(t, err)
	assert.Equal(t, common.BytesToAddress([]byte("xyz")), addr)

	u := NewUint256(ctx, crypto.Keccak256Hash([]byte("u256")))
	u.Set(big.NewInt(100))
	require.NoError(t, u.Add(big.NewInt(20)))
	require.NoError(t, u.Sub(big.NewInt(5)))
	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(115), v.Int64())

	b := NewBool(ctx, crypto.Keccak256Hash([]byte("flag")))
	flag, err := b.Get()
	require.NoError(t, err)
	assert.False(t, flag)
	b.Set(true)
	flag, err = b.Get()
	require.NoError(t, err)
	assert.True(t, flag)

	s := NewString(ctx, crypto.Keccak256Hash([]byte("name")))
	s.Set("protocol-one")
	name, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "protocol-one", name)
}

func TestOwnable(t *testing.T) {
	ctx := newTestContext()
	owner := common.BytesToAddress([]byte("owner"))
	other := common.BytesToAddress([]byte("other"))

	ownable := NewOwnable(ctx)
	ownable.Init(owner)

	assert.NoError(t, ownable.Check(owner))
	assert.EqualError(t, ownable.Check(other), "Ownable: caller is not the owner")

	assert.EqualError(t, ownable.TransferOwnership(other, other), "Ownable: caller is not the owner")
	require.NoError(t, ownable.TransferOwnership(owner, other))
	assert.NoError(t, ownable.Check(other))
}

func TestPausable(t *testing.T) {
	ctx := newTestContext()
	pausable := NewPausable(ctx)

	assert.NoError(t, pausable.Check())
	pausable.SetPaused(true)
	err := pausable.Check()
	assert.EqualError(t, err, "Pausable: paused")
	assert.True(t, reverts.IsRevertErr(err))
}
