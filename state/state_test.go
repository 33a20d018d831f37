// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morlabs/distribution/kvdb"
)

var (
	addr = common.BytesToAddress([]byte("contract"))
	key  = common.BytesToHash([]byte("slot"))
)

func TestBalance(t *testing.T) {
	st := New()

	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())

	st.SetBalance(addr, big.NewInt(42))
	bal, err = st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, int64(42), bal.Int64())
}

func TestStorage(t *testing.T) {
	st := New()

	v, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, common.Hash{}, v)

	want := common.BytesToHash([]byte("value"))
	st.SetStorage(addr, key, want)
	v, err = st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, want, v)

	// raw and word views agree
	raw, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, want.Bytes(), raw)
}

func TestCheckpointRevert(t *testing.T) {
	st := New()
	st.SetBalance(addr, big.NewInt(1))

	rev := st.NewCheckpoint()
	st.SetBalance(addr, big.NewInt(2))
	st.SetStorage(addr, key, common.BytesToHash([]byte("dirty")))
	st.RevertTo(rev)

	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bal.Int64())

	v, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, common.Hash{}, v)
}

func TestTransact(t *testing.T) {
	st := New()

	err := st.Transact(func() error {
		st.SetBalance(addr, big.NewInt(7))
		return errors.New("boom")
	})
	assert.Error(t, err)

	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())

	require.NoError(t, st.Transact(func() error {
		st.SetBalance(addr, big.NewInt(7))
		return nil
	}))
	bal, err = st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, int64(7), bal.Int64())
}

func TestFlushAndReload(t *testing.T) {
	db, err := kvdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := New()
	st.SetBalance(addr, big.NewInt(99))
	st.SetStorage(addr, key, common.BytesToHash([]byte("persisted")))
	require.NoError(t, st.Flush(db))

	reloaded := NewWithSource(db)
	bal, err := reloaded.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, int64(99), bal.Int64())

	v, err := reloaded.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, common.BytesToHash([]byte("persisted")), v)
}

func TestEncodeDecodeStorage(t *testing.T) {
	st := New()

	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return []byte("encoded"), nil
	}))
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		assert.Equal(t, []byte("encoded"), raw)
		return nil
	}))
}
