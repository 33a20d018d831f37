// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Key is anything usable as a mapping key.
type Key interface {
	Bytes() []byte
}

// Uint64Key adapts an integer to a mapping key.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(k))
	return b
}

// Mapping is a key/value storage abstraction for native contracts, similar to
// a mapping in Solidity. Values are RLP encoded; the slot position is the
// keccak of the key and the mapping's base position.
type Mapping[K Key, V any] struct {
	context *Context
	basePos common.Hash
}

func NewMapping[K Key, V any](context *Context, pos common.Hash) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) common.Hash {
	return crypto.Keccak256Hash(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Has reports whether the slot for key holds any encoded value.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	raw, err := m.context.state.GetRawStorage(m.context.address, m.position(key))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

// Clear empties the slot for key.
func (m *Mapping[K, V]) Clear(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}
