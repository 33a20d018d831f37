// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Address is a wrapper for storage and retrieval of a single address slot.
type Address struct {
	context *Context
	pos     common.Hash
}

func NewAddress(context *Context, pos common.Hash) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (common.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr common.Address) {
	a.context.state.SetStorage(a.context.address, a.pos, common.BytesToHash(addr.Bytes()))
}

// Uint256 is a wrapper for storage and retrieval of a single uint256 slot.
// Values wider than 256 bits are truncated to fit, as they would be on chain.
type Uint256 struct {
	context *Context
	pos     common.Hash
}

func NewUint256(context *Context, pos common.Hash) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) {
	v, _ := uint256.FromBig(value)
	u.context.state.SetStorage(u.context.address, u.pos, v.Bytes32())
}

func (u *Uint256) Add(value *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	u.Set(current.Add(current, value))
	return nil
}

func (u *Uint256) Sub(value *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	u.Set(current.Sub(current, value))
	return nil
}

// Uint64 is a wrapper for storage and retrieval of a single uint64 slot.
type Uint64 struct {
	context *Context
	pos     common.Hash
}

func NewUint64(context *Context, pos common.Hash) *Uint64 {
	return &Uint64{context: context, pos: pos}
}

func (u *Uint64) Get() (uint64, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return 0, err
	}
	return new(big.Int).SetBytes(storage.Bytes()).Uint64(), nil
}

func (u *Uint64) Set(value uint64) {
	u.context.state.SetStorage(u.context.address, u.pos, common.BigToHash(new(big.Int).SetUint64(value)))
}

// Bytes32 is a wrapper for storage and retrieval of a single [32]byte slot.
type Bytes32 struct {
	context *Context
	pos     common.Hash
}

func NewBytes32(context *Context, pos common.Hash) *Bytes32 {
	return &Bytes32{context: context, pos: pos}
}

func (b *Bytes32) Get() (common.Hash, error) {
	return b.context.state.GetStorage(b.context.address, b.pos)
}

func (b *Bytes32) Set(value common.Hash) {
	b.context.state.SetStorage(b.context.address, b.pos, value)
}

// Bool is a wrapper for storage and retrieval of a single bool slot.
type Bool struct {
	context *Context
	pos     common.Hash
}

func NewBool(context *Context, pos common.Hash) *Bool {
	return &Bool{context: context, pos: pos}
}

func (b *Bool) Get() (bool, error) {
	storage, err := b.context.state.GetStorage(b.context.address, b.pos)
	if err != nil {
		return false, err
	}
	return storage != (common.Hash{}), nil
}

func (b *Bool) Set(value bool) {
	var storage common.Hash
	if value {
		storage[31] = 1
	}
	b.context.state.SetStorage(b.context.address, b.pos, storage)
}

// String is a wrapper for storage and retrieval of a variable length string.
type String struct {
	context *Context
	pos     common.Hash
}

func NewString(context *Context, pos common.Hash) *String {
	return &String{context: context, pos: pos}
}

func (s *String) Get() (string, error) {
	raw, err := s.context.state.GetRawStorage(s.context.address, s.pos)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *String) Set(value string) {
	s.context.state.SetRawStorage(s.context.address, s.pos, []byte(value))
}
