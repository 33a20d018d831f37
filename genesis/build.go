// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/morlabs/distribution/bridges"
	"github.com/morlabs/distribution/distribution"
	"github.com/morlabs/distribution/factory"
	"github.com/morlabs/distribution/feeconfig"
	"github.com/morlabs/distribution/l1sender"
	"github.com/morlabs/distribution/l2receiver"
	"github.com/morlabs/distribution/l2tokenreceiver"
	"github.com/morlabs/distribution/log"
	"github.com/morlabs/distribution/protocol"
	"github.com/morlabs/distribution/state"
	"github.com/morlabs/distribution/token"
)

var logger = log.WithContext("pkg", "genesis")

func systemAddress(name string) common.Address {
	return common.BytesToAddress([]byte("system:" + name))
}

// Deployment is the fully wired playground environment a Config builds:
// both chain sides of one protocol deployment, joined by loopback
// transports.
type Deployment struct {
	Config *Config
	State  *state.State

	DepositToken *token.DepositToken
	WrappedToken *token.WrappedDepositToken
	Endpoint     *bridges.LoopbackEndpoint
	FeeConfig    *feeconfig.FeeConfig

	Beacon    *factory.Beacon
	L1Factory *factory.L1Factory
	L2Factory *factory.L2Factory

	Distribution      *distribution.Distribution
	L1Sender          *l1sender.L1Sender
	L2MessageReceiver *l2receiver.L2MessageReceiver
	L2TokenReceiver   *l2tokenreceiver.L2TokenReceiver
	MOR               *token.MOR20
}

// fabric holds the shared infrastructure every deployment path constructs
// before the protocol contracts exist.
type fabric struct {
	stETH      *token.DepositToken
	wstETH     *token.WrappedDepositToken
	endpoint   *bridges.LoopbackEndpoint
	arbGateway *bridges.LoopbackGateway
	router     *bridges.FixedRateRouter
	npm        *bridges.InMemoryPositionManager
	fees       *feeconfig.FeeConfig
	beacon     *factory.Beacon
	l1f        *factory.L1Factory
	l2f        *factory.L2Factory
}

func (c *Config) newFabric(st *state.State) *fabric {
	stETH := token.NewDepositToken(systemAddress("stETH"), st)
	wstETH := token.NewWrappedDepositToken(systemAddress("wstETH"), st, stETH)
	beacon := factory.NewBeacon(systemAddress("beacon"), st)
	return &fabric{
		stETH:      stETH,
		wstETH:     wstETH,
		endpoint:   bridges.NewLoopbackEndpoint(systemAddress("lz-endpoint"), c.LzFee.Int()),
		arbGateway: bridges.NewLoopbackGateway(systemAddress("arb-escrow"), wstETH),
		router:     bridges.NewFixedRateRouter(systemAddress("swap-router"), big.NewInt(1), big.NewInt(1), func() uint64 { return c.LaunchTime }),
		npm:        bridges.NewInMemoryPositionManager(systemAddress("position-manager")),
		fees:       feeconfig.New(systemAddress("fee-config"), st),
		beacon:     beacon,
		l1f:        factory.NewL1Factory(systemAddress("l1-factory"), st, beacon),
		l2f:        factory.NewL2Factory(systemAddress("l2-factory"), st, beacon),
	}
}

// applyExternalDeps runs the factory setters. These live in process memory,
// so both the fresh-build and the reattach path need them each start.
func (c *Config) applyExternalDeps(f *fabric) error {
	owner := common.Address(c.Owner)

	if err := f.l1f.SetLzExternalDeps(owner, f.endpoint, c.L2ChainID); err != nil {
		return err
	}
	if err := f.l1f.SetArbExternalDeps(owner, f.arbGateway); err != nil {
		return err
	}
	if err := f.l1f.SetFeeConfig(owner, f.fees); err != nil {
		return err
	}
	if err := f.l1f.SetDepositTokens(owner, f.stETH, f.wstETH); err != nil {
		return err
	}
	if err := f.l1f.SetL2Factory(owner, f.l2f.Address()); err != nil {
		return err
	}

	if err := f.l2f.SetLzExternalDeps(owner, f.endpoint, f.endpoint.Address(), c.L2ChainID); err != nil {
		return err
	}
	if err := f.l2f.SetUniswapExternalDeps(owner, f.router, f.router.Address(), f.npm, f.npm.Address()); err != nil {
		return err
	}
	if err := f.l2f.SetWrappedToken(owner, f.wstETH); err != nil {
		return err
	}
	return f.l2f.SetL1Factory(owner, f.l1f.Address())
}

func (c *Config) deployment(f *fabric, st *state.State,
	dist *distribution.Distribution, sender *l1sender.L1Sender,
	receiver *l2receiver.L2MessageReceiver, tokenReceiver *l2tokenreceiver.L2TokenReceiver,
	mor *token.MOR20,
) *Deployment {
	f.endpoint.Register(c.L2ChainID, receiver.Address(), receiver)
	return &Deployment{
		Config: c,
		State:  st,

		DepositToken: f.stETH,
		WrappedToken: f.wstETH,
		Endpoint:     f.endpoint,
		FeeConfig:    f.fees,

		Beacon:    f.beacon,
		L1Factory: f.l1f,
		L2Factory: f.l2f,

		Distribution:      dist,
		L1Sender:          sender,
		L2MessageReceiver: receiver,
		L2TokenReceiver:   tokenReceiver,
		MOR:               mor,
	}
}

// Build stands the environment up on a fresh st. Both factories are owned by
// the config owner, who also owns the deployed protocol instance.
func (c *Config) Build(st *state.State) (*Deployment, error) {
	owner := common.Address(c.Owner)
	f := c.newFabric(st)

	if err := f.fees.Init(owner, common.Address(c.Treasury), c.BaseFee.Int()); err != nil {
		return nil, err
	}

	f.beacon.Init(owner)
	poolTypes := []protocol.PoolType{
		protocol.PoolDistribution,
		protocol.PoolL1Sender,
		protocol.PoolL2MessageReceiver,
		protocol.PoolL2TokenReceiver,
	}
	impls := make([]common.Address, len(poolTypes))
	for i := range impls {
		impls[i] = systemAddress("impl-" + string(rune('0'+poolTypes[i])))
	}
	if err := f.beacon.SetImplementations(owner, poolTypes, impls); err != nil {
		return nil, err
	}

	f.l1f.Init(owner)
	f.l2f.Init(owner)
	if err := c.applyExternalDeps(f); err != nil {
		return nil, err
	}

	l2dep, err := f.l2f.Deploy(owner, factory.L2Params{
		ProtocolName: c.ProtocolName,
		MorName:      c.Mor.Name,
		MorSymbol:    c.Mor.Symbol,
	})
	if err != nil {
		return nil, errors.Wrap(err, "deploy L2 side")
	}

	l1dep, err := f.l1f.Deploy(owner, factory.L1Params{ProtocolName: c.ProtocolName, Now: c.LaunchTime})
	if err != nil {
		return nil, errors.Wrap(err, "deploy L1 side")
	}

	for i, pool := range c.Pools {
		poolID, err := l1dep.Distribution.CreatePool(owner, &distribution.Pool{
			PayoutStart:                  pool.PayoutStart,
			DecreaseInterval:             pool.DecreaseInterval,
			WithdrawLockPeriod:           pool.WithdrawLockPeriod,
			ClaimLockPeriod:              pool.ClaimLockPeriod,
			WithdrawLockPeriodAfterStake: pool.WithdrawLockPeriodAfterStake,
			InitialReward:                pool.InitialReward.Int(),
			RewardDecrease:               pool.RewardDecrease.Int(),
			MinimalStake:                 pool.MinimalStake.Int(),
			IsPublic:                     pool.IsPublic,
		}, c.LaunchTime)
		if err != nil {
			return nil, errors.Wrapf(err, "create pool %d", i)
		}
		if pool.ClaimLockPeriodAfterStake != 0 || pool.ClaimLockPeriodAfterClaim != 0 {
			if err := l1dep.Distribution.EditPoolLimits(owner, poolID, &distribution.PoolLimits{
				ClaimLockPeriodAfterStake: pool.ClaimLockPeriodAfterStake,
				ClaimLockPeriodAfterClaim: pool.ClaimLockPeriodAfterClaim,
			}); err != nil {
				return nil, errors.Wrapf(err, "set pool %d limits", i)
			}
		}
	}

	for _, account := range c.Accounts {
		if err := f.stETH.Mint(common.Address(account.Address), account.Balance.Int()); err != nil {
			return nil, err
		}
	}

	logger.Info("genesis built",
		"protocol", c.ProtocolName,
		"distribution", l1dep.Distribution.Address(),
		"pools", len(c.Pools),
		"accounts", len(c.Accounts),
	)

	return c.deployment(f, st, l1dep.Distribution, l1dep.L1Sender,
		l2dep.L2MessageReceiver, l2dep.L2TokenReceiver, l2dep.MOR), nil
}

// Attach reconstructs the environment over state that was already built and
// persisted. It rewires the in-process collaborators at their deterministic
// addresses without re-deploying, re-creating pools or re-funding accounts.
func (c *Config) Attach(st *state.State) (*Deployment, error) {
	owner := common.Address(c.Owner)
	f := c.newFabric(st)

	factoryOwner, err := f.l1f.Owner()
	if err != nil {
		return nil, err
	}
	if factoryOwner != owner {
		return nil, errors.Errorf("state was built by %s, config owner is %s", factoryOwner, owner)
	}

	if err := c.applyExternalDeps(f); err != nil {
		return nil, err
	}

	distAddr, senderAddr := f.l1f.PredictL1Addresses(owner, c.ProtocolName)
	receiverAddr, tokenReceiverAddr := f.l2f.PredictL2Addresses(owner, c.ProtocolName)
	morAddr := f.l2f.MorTokenAddress(owner, c.ProtocolName)

	dist := distribution.New(distAddr, st)
	sender := l1sender.New(senderAddr, st)
	receiver := l2receiver.New(receiverAddr, st)
	tokenReceiver := l2tokenreceiver.New(tokenReceiverAddr, st)
	mor := token.NewMOR20(morAddr, st)

	if err := sender.Init(owner, distAddr,
		l1sender.RewardTokenConfig{
			Gateway:         f.endpoint,
			Receiver:        receiverAddr,
			ReceiverChainID: c.L2ChainID,
		},
		l1sender.DepositTokenConfig{
			Token:        f.stETH,
			WrappedToken: f.wstETH,
			Gateway:      f.arbGateway,
			Receiver:     tokenReceiverAddr,
		}); err != nil {
		return nil, err
	}
	if err := dist.Init(owner, f.stETH, sender, f.fees); err != nil {
		return nil, err
	}
	if err := receiver.Init(owner, l2receiver.Config{
		Gateway:       f.endpoint.Address(),
		Sender:        senderAddr,
		SenderChainID: c.L2ChainID,
	}, mor); err != nil {
		return nil, err
	}
	if err := tokenReceiver.Init(owner, f.router, f.router.Address(), f.npm, f.npm.Address(),
		l2tokenreceiver.SwapParams{TokenIn: f.wstETH.Address(), TokenOut: morAddr},
		l2tokenreceiver.SwapParams{TokenIn: morAddr, TokenOut: f.wstETH.Address()},
	); err != nil {
		return nil, err
	}
	tokenReceiver.RegisterToken(f.wstETH)
	tokenReceiver.RegisterToken(mor)

	logger.Info("genesis attached", "protocol", c.ProtocolName, "distribution", distAddr)

	return c.deployment(f, st, dist, sender, receiver, tokenReceiver, mor), nil
}
