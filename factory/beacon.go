// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package factory implements deterministic deployment of protocol instances:
// a beacon publishing the current implementation per pool type, freezable
// proxies pinned to it and the factories deploying them at predictable
// addresses.
package factory

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/morlabs/distribution/protocol"
	"github.com/morlabs/distribution/reverts"
	"github.com/morlabs/distribution/solidity"
	"github.com/morlabs/distribution/state"
)

var (
	errImplNotFound       = reverts.New("F: implementation not found")
	errInvalidImpl        = reverts.New("F: invalid implementation")
	errImplLengthMismatch = reverts.New("F: invalid length")
)

var slotImplementations = solidity.SlotPosition("beacon-implementations")

type poolTypeKey protocol.PoolType

func (k poolTypeKey) Bytes() []byte {
	return []byte{byte(k)}
}

// Beacon publishes the current implementation address per pool type. Proxies
// that are not frozen follow it.
type Beacon struct {
	addr    common.Address
	ownable *solidity.Ownable
	impls   *solidity.Mapping[poolTypeKey, common.Address]
}

func NewBeacon(addr common.Address, st *state.State) *Beacon {
	context := solidity.NewContext(addr, st)
	return &Beacon{
		addr:    addr,
		ownable: solidity.NewOwnable(context),
		impls:   solidity.NewMapping[poolTypeKey, common.Address](context, slotImplementations),
	}
}

func (b *Beacon) Init(owner common.Address) {
	b.ownable.Init(owner)
}

func (b *Beacon) Address() common.Address {
	return b.addr
}

// SetImplementations points pool types at new implementations. Owner only.
func (b *Beacon) SetImplementations(caller common.Address, poolTypes []protocol.PoolType, impls []common.Address) error {
	if err := b.ownable.Check(caller); err != nil {
		return err
	}
	if len(poolTypes) != len(impls) {
		return errImplLengthMismatch
	}
	for i, poolType := range poolTypes {
		if impls[i] == (common.Address{}) {
			return errInvalidImpl
		}
		if err := b.impls.Set(poolTypeKey(poolType), impls[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetImplementation returns the current implementation for a pool type.
func (b *Beacon) GetImplementation(poolType protocol.PoolType) (common.Address, error) {
	impl, err := b.impls.Get(poolTypeKey(poolType))
	if err != nil {
		return common.Address{}, err
	}
	if impl == (common.Address{}) {
		return common.Address{}, errImplNotFound
	}
	return impl, nil
}
