// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/morlabs/distribution/protocol"
	"github.com/morlabs/distribution/reverts"
	"github.com/morlabs/distribution/solidity"
	"github.com/morlabs/distribution/state"
)

var (
	errProxyNotOwner  = reverts.New("FBP: caller is not the owner")
	errProxyFrozen    = reverts.New("FBP: already frozen")
	errProxyNotFrozen = reverts.New("FBP: not frozen")
)

var (
	slotProxyOwner      = solidity.SlotPosition("freezable-proxy-owner")
	slotProxyPoolType   = solidity.SlotPosition("freezable-proxy-pool-type")
	slotProxyFrozenImpl = solidity.SlotPosition("freezable-proxy-frozen-impl")
	slotProxyFrozen     = solidity.SlotPosition("freezable-proxy-frozen")
)

// FreezableBeaconProxy is a deployed protocol instance. It normally follows
// the beacon's implementation for its pool type; its deployer can freeze it
// to the implementation current at freeze time, isolating it from upgrades.
type FreezableBeaconProxy struct {
	addr       common.Address
	beacon     *Beacon
	owner      *solidity.Address
	poolType   *solidity.Uint64
	frozenImpl *solidity.Address
	frozen     *solidity.Bool
}

func NewFreezableBeaconProxy(addr common.Address, st *state.State, beacon *Beacon) *FreezableBeaconProxy {
	context := solidity.NewContext(addr, st)
	return &FreezableBeaconProxy{
		addr:       addr,
		beacon:     beacon,
		owner:      solidity.NewAddress(context, slotProxyOwner),
		poolType:   solidity.NewUint64(context, slotProxyPoolType),
		frozenImpl: solidity.NewAddress(context, slotProxyFrozenImpl),
		frozen:     solidity.NewBool(context, slotProxyFrozen),
	}
}

func (p *FreezableBeaconProxy) Init(deployer common.Address, poolType protocol.PoolType) {
	p.owner.Set(deployer)
	p.poolType.Set(uint64(poolType))
}

func (p *FreezableBeaconProxy) Address() common.Address {
	return p.addr
}

func (p *FreezableBeaconProxy) Owner() (common.Address, error) {
	return p.owner.Get()
}

func (p *FreezableBeaconProxy) PoolType() (protocol.PoolType, error) {
	poolType, err := p.poolType.Get()
	return protocol.PoolType(poolType), err
}

func (p *FreezableBeaconProxy) IsFrozen() (bool, error) {
	return p.frozen.Get()
}

func (p *FreezableBeaconProxy) checkOwner(caller common.Address) error {
	owner, err := p.owner.Get()
	if err != nil {
		return err
	}
	if caller != owner {
		return errProxyNotOwner
	}
	return nil
}

// Freeze pins the proxy to the implementation current at this moment.
func (p *FreezableBeaconProxy) Freeze(caller common.Address) error {
	if err := p.checkOwner(caller); err != nil {
		return err
	}
	frozen, err := p.frozen.Get()
	if err != nil {
		return err
	}
	if frozen {
		return errProxyFrozen
	}
	poolType, err := p.PoolType()
	if err != nil {
		return err
	}
	impl, err := p.beacon.GetImplementation(poolType)
	if err != nil {
		return err
	}
	p.frozenImpl.Set(impl)
	p.frozen.Set(true)
	return nil
}

// Unfreeze resumes following the beacon.
func (p *FreezableBeaconProxy) Unfreeze(caller common.Address) error {
	if err := p.checkOwner(caller); err != nil {
		return err
	}
	frozen, err := p.frozen.Get()
	if err != nil {
		return err
	}
	if !frozen {
		return errProxyNotFrozen
	}
	p.frozenImpl.Set(common.Address{})
	p.frozen.Set(false)
	return nil
}

// Implementation resolves the implementation the proxy currently points at.
func (p *FreezableBeaconProxy) Implementation() (common.Address, error) {
	frozen, err := p.frozen.Get()
	if err != nil {
		return common.Address{}, err
	}
	if frozen {
		return p.frozenImpl.Get()
	}
	poolType, err := p.PoolType()
	if err != nil {
		return common.Address{}, err
	}
	return p.beacon.GetImplementation(poolType)
}
