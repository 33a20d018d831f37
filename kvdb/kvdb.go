// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kvdb defines the key/value store interfaces used to persist
// contract state snapshots.
package kvdb

// Getter reads values.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
}

// Putter writes values.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// Batch accumulates writes and commits them in one go.
type Batch interface {
	Putter
	Len() int
	Write() error
}

// Store is a full key/value store.
type Store interface {
	Getter
	Putter
	NewBatch() Batch
	IsNotFound(err error) bool
	Close() error
}
