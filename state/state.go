// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state provides the journaled key/value state all contracts operate
// on. Mutations land in stacked in-memory levels; a checkpoint marks a level
// boundary and RevertTo discards everything above it, which is what gives
// every entry point its all-or-nothing semantics.
package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/morlabs/distribution/kvdb"
)

type (
	storageKey struct {
		addr common.Address
		key  common.Hash
	}
	balanceKey common.Address
)

type level struct {
	kvs map[any][]byte
}

// State is the mutable world state: per-address native balances (used to pay
// cross-chain messaging fees) and per-address raw storage.
type State struct {
	src    kvdb.Getter
	levels []*level
}

// New creates an empty in-memory state.
func New() *State {
	return NewWithSource(nil)
}

// NewWithSource creates a state whose reads fall through to src on miss.
// src may be nil.
func NewWithSource(src kvdb.Getter) *State {
	return &State{
		src:    src,
		levels: []*level{{kvs: make(map[any][]byte)}},
	}
}

// NewCheckpoint marks the current state and returns a revision usable
// with RevertTo.
func (s *State) NewCheckpoint() int {
	s.levels = append(s.levels, &level{kvs: make(map[any][]byte)})
	return len(s.levels) - 1
}

// RevertTo discards all changes made since the given revision.
func (s *State) RevertTo(revision int) {
	if revision < 1 || revision > len(s.levels) {
		return
	}
	s.levels = s.levels[:revision]
}

// Transact runs fn inside a checkpoint and reverts every change fn made if it
// returns an error. This is the single-call atomicity boundary of the system.
func (s *State) Transact(fn func() error) error {
	rev := s.NewCheckpoint()
	if err := fn(); err != nil {
		s.RevertTo(rev)
		return err
	}
	return nil
}

func (s *State) get(key any) ([]byte, error) {
	for i := len(s.levels) - 1; i >= 0; i-- {
		if v, ok := s.levels[i].kvs[key]; ok {
			return v, nil
		}
	}
	if s.src == nil {
		return nil, nil
	}
	raw, err := s.src.Get(persistKey(key))
	if err != nil {
		if nf, ok := s.src.(interface{ IsNotFound(error) bool }); ok && nf.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "state source get")
	}
	return raw, nil
}

func (s *State) put(key any, value []byte) {
	top := s.levels[len(s.levels)-1]
	top.kvs[key] = value
}

// GetBalance returns the native balance of an address.
func (s *State) GetBalance(addr common.Address) (*big.Int, error) {
	raw, err := s.get(balanceKey(addr))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

// SetBalance sets the native balance of an address.
func (s *State) SetBalance(addr common.Address, balance *big.Int) {
	s.put(balanceKey(addr), balance.Bytes())
}

// GetStorage returns a word of storage.
func (s *State) GetStorage(addr common.Address, key common.Hash) (common.Hash, error) {
	raw, err := s.get(storageKey{addr, key})
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(raw), nil
}

// SetStorage sets a word of storage.
func (s *State) SetStorage(addr common.Address, key, value common.Hash) {
	if value == (common.Hash{}) {
		s.put(storageKey{addr, key}, nil)
		return
	}
	s.put(storageKey{addr, key}, value.Bytes())
}

// GetRawStorage returns the raw encoded storage value.
func (s *State) GetRawStorage(addr common.Address, key common.Hash) ([]byte, error) {
	return s.get(storageKey{addr, key})
}

// SetRawStorage stores the raw encoded storage value.
func (s *State) SetRawStorage(addr common.Address, key common.Hash, raw []byte) {
	s.put(storageKey{addr, key}, raw)
}

// EncodeStorage stores the value produced by enc. An empty result clears
// the slot.
func (s *State) EncodeStorage(addr common.Address, key common.Hash, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return err
	}
	s.put(storageKey{addr, key}, raw)
	return nil
}

// DecodeStorage passes the raw storage value to dec. A never-written slot
// yields an empty slice.
func (s *State) DecodeStorage(addr common.Address, key common.Hash, dec func([]byte) error) error {
	raw, err := s.get(storageKey{addr, key})
	if err != nil {
		return err
	}
	return dec(raw)
}

// Flush writes the composed current state into db. Flushing does not collapse
// the level stack; the state stays usable afterwards.
func (s *State) Flush(db kvdb.Store) error {
	composed := make(map[any][]byte)
	for _, lvl := range s.levels {
		for k, v := range lvl.kvs {
			composed[k] = v
		}
	}
	batch := db.NewBatch()
	for k, v := range composed {
		if len(v) == 0 {
			if err := batch.Delete(persistKey(k)); err != nil {
				return err
			}
			continue
		}
		if err := batch.Put(persistKey(k), v); err != nil {
			return err
		}
	}
	return batch.Write()
}

func persistKey(key any) []byte {
	switch k := key.(type) {
	case balanceKey:
		return append([]byte("b"), k[:]...)
	case storageKey:
		out := append([]byte("s"), k.addr[:]...)
		return append(out, k.key[:]...)
	default:
		panic("unknown state key type")
	}
}
