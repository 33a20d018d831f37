// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/morlabs/distribution/log"
	"github.com/morlabs/distribution/metrics"
	"github.com/morlabs/distribution/protocol"
	"github.com/morlabs/distribution/reverts"
	"github.com/morlabs/distribution/solidity"
	"github.com/morlabs/distribution/state"
)

var logger = log.WithContext("pkg", "factory")

var metricDeployed = metrics.Counter("factory_deployed_count")

var (
	errEmptyPoolName = reverts.New("F: poolName_ is empty")
	errSaltUsed      = reverts.New("F: salt used")
)

var (
	slotUsedSalts      = solidity.SlotPosition("factory-used-salts")
	slotProxies        = solidity.SlotPosition("factory-proxies")
	slotProtocolCounts = solidity.SlotPosition("factory-protocol-counts")
	slotProtocolNames  = solidity.SlotPosition("factory-protocol-names")
	slotKnownProtocols = solidity.SlotPosition("factory-known-protocols")
)

// deployerIndexKey addresses the n-th protocol name a deployer created.
type deployerIndexKey struct {
	deployer common.Address
	index    uint64
}

func (k deployerIndexKey) Bytes() []byte {
	b := make([]byte, 0, common.AddressLength+8)
	b = append(b, k.deployer.Bytes()...)
	return binary.BigEndian.AppendUint64(b, k.index)
}

// BaseFactory deploys freezable proxies at deterministic addresses and keeps
// a registry of who deployed what.
type BaseFactory struct {
	addr     common.Address
	state    *state.State
	ownable  *solidity.Ownable
	pausable *solidity.Pausable
	beacon   *Beacon

	usedSalts      *solidity.Mapping[common.Hash, bool]
	proxies        *solidity.Mapping[common.Hash, common.Address]
	protocolCounts *solidity.Mapping[common.Address, uint64]
	protocolNames  *solidity.Mapping[deployerIndexKey, string]
	knownProtocols *solidity.Mapping[common.Hash, bool]
}

func NewBaseFactory(addr common.Address, st *state.State, beacon *Beacon) *BaseFactory {
	context := solidity.NewContext(addr, st)
	return &BaseFactory{
		addr:     addr,
		state:    st,
		ownable:  solidity.NewOwnable(context),
		pausable: solidity.NewPausable(context),
		beacon:   beacon,

		usedSalts:      solidity.NewMapping[common.Hash, bool](context, slotUsedSalts),
		proxies:        solidity.NewMapping[common.Hash, common.Address](context, slotProxies),
		protocolCounts: solidity.NewMapping[common.Address, uint64](context, slotProtocolCounts),
		protocolNames:  solidity.NewMapping[deployerIndexKey, string](context, slotProtocolNames),
		knownProtocols: solidity.NewMapping[common.Hash, bool](context, slotKnownProtocols),
	}
}

func (f *BaseFactory) Init(owner common.Address) {
	f.ownable.Init(owner)
}

func (f *BaseFactory) Address() common.Address {
	return f.addr
}

func (f *BaseFactory) Owner() (common.Address, error) {
	return f.ownable.Owner()
}

func (f *BaseFactory) Beacon() *Beacon {
	return f.beacon
}

// Pause stops deployments. Owner only.
func (f *BaseFactory) Pause(caller common.Address) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	f.pausable.SetPaused(true)
	return nil
}

// Unpause resumes deployments. Owner only.
func (f *BaseFactory) Unpause(caller common.Address) error {
	if err := f.ownable.Check(caller); err != nil {
		return err
	}
	f.pausable.SetPaused(false)
	return nil
}

// Deploy claims the (caller, name, poolType) salt and creates the proxy
// record at its deterministic address.
func (f *BaseFactory) Deploy(caller common.Address, protocolName string, poolType protocol.PoolType) (proxy *FreezableBeaconProxy, err error) {
	err = f.state.Transact(func() error {
		if err := f.pausable.Check(); err != nil {
			return err
		}
		if protocolName == "" {
			return errEmptyPoolName
		}
		salt := protocol.Salt(caller, protocolName, poolType)
		used, err := f.usedSalts.Get(salt)
		if err != nil {
			return err
		}
		if used {
			return errSaltUsed
		}
		if err := f.usedSalts.Set(salt, true); err != nil {
			return err
		}

		addr := protocol.CreateProxyAddress(f.addr, salt)
		proxy = NewFreezableBeaconProxy(addr, f.state, f.beacon)
		proxy.Init(caller, poolType)
		if err := f.proxies.Set(salt, addr); err != nil {
			return err
		}
		if err := f.registerProtocol(caller, protocolName); err != nil {
			return err
		}
		metricDeployed.Add(1)
		logger.Info("deployed proxy", "deployer", caller, "protocol", protocolName, "poolType", poolType, "address", addr)
		return nil
	})
	return
}

// registerProtocol appends the name to the deployer's protocol list once,
// however many pool types it spawns.
func (f *BaseFactory) registerProtocol(deployer common.Address, protocolName string) error {
	nameHash := common.Hash(protocol.Salt(deployer, protocolName, 0xff))
	known, err := f.knownProtocols.Get(nameHash)
	if err != nil {
		return err
	}
	if known {
		return nil
	}
	if err := f.knownProtocols.Set(nameHash, true); err != nil {
		return err
	}
	count, err := f.protocolCounts.Get(deployer)
	if err != nil {
		return err
	}
	if err := f.protocolNames.Set(deployerIndexKey{deployer, count}, protocolName); err != nil {
		return err
	}
	return f.protocolCounts.Set(deployer, count+1)
}

// GetProxyAddress returns the deployed proxy address for the claim, or the
// zero address when nothing was deployed.
func (f *BaseFactory) GetProxyAddress(deployer common.Address, protocolName string, poolType protocol.PoolType) (common.Address, error) {
	return f.proxies.Get(protocol.Salt(deployer, protocolName, poolType))
}

// GetProxy reopens the proxy record at its deployed address.
func (f *BaseFactory) GetProxy(deployer common.Address, protocolName string, poolType protocol.PoolType) (*FreezableBeaconProxy, error) {
	addr, err := f.GetProxyAddress(deployer, protocolName, poolType)
	if err != nil {
		return nil, err
	}
	if addr == (common.Address{}) {
		return nil, errors.Errorf("no proxy deployed for %s/%q/%d", deployer, protocolName, poolType)
	}
	return NewFreezableBeaconProxy(addr, f.state, f.beacon), nil
}

// CountProtocols returns how many protocol names the deployer created.
func (f *BaseFactory) CountProtocols(deployer common.Address) (uint64, error) {
	return f.protocolCounts.Get(deployer)
}

// ListProtocols pages through the deployer's protocol names.
func (f *BaseFactory) ListProtocols(deployer common.Address, offset, limit uint64) ([]string, error) {
	count, err := f.protocolCounts.Get(deployer)
	if err != nil {
		return nil, err
	}
	if offset >= count {
		return nil, nil
	}
	end := offset + limit
	if end > count || end < offset {
		end = count
	}
	names := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		name, err := f.protocolNames.Get(deployerIndexKey{deployer, i})
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// PredictAddresses computes the addresses Deploy would claim for the pool
// types, without deploying. Matches the deploy path exactly.
func (f *BaseFactory) PredictAddresses(deployer common.Address, protocolName string, poolTypes ...protocol.PoolType) []common.Address {
	addrs := make([]common.Address, len(poolTypes))
	for i, poolType := range poolTypes {
		addrs[i] = protocol.CreateProxyAddress(f.addr, protocol.Salt(deployer, protocolName, poolType))
	}
	return addrs
}
