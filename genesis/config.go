// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis loads and validates playground deployment configs and
// builds the full two-chain environment they describe.
package genesis

import (
	"io"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/morlabs/distribution/protocol"
)

// Amount is a big integer parsed from a decimal or 0x-prefixed YAML scalar.
type Amount big.Int

func (a *Amount) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	i, ok := new(big.Int).SetString(raw, 0)
	if !ok {
		return errors.Errorf("invalid amount %q", raw)
	}
	*a = Amount(*i)
	return nil
}

func (a *Amount) Int() *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return (*big.Int)(a)
}

// Address is a common.Address parsed from a YAML scalar.
type Address common.Address

func (a *Address) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if !common.IsHexAddress(raw) {
		return errors.Errorf("invalid address %q", raw)
	}
	*a = Address(common.HexToAddress(raw))
	return nil
}

// PoolConfig describes one reward pool to create at launch.
type PoolConfig struct {
	PayoutStart                  uint64  `yaml:"payoutStart"`
	DecreaseInterval             uint64  `yaml:"decreaseInterval"`
	WithdrawLockPeriod           uint64  `yaml:"withdrawLockPeriod"`
	ClaimLockPeriod              uint64  `yaml:"claimLockPeriod"`
	WithdrawLockPeriodAfterStake uint64  `yaml:"withdrawLockPeriodAfterStake"`
	InitialReward                *Amount `yaml:"initialReward"`
	RewardDecrease               *Amount `yaml:"rewardDecrease"`
	MinimalStake                 *Amount `yaml:"minimalStake"`
	IsPublic                     bool    `yaml:"isPublic"`

	ClaimLockPeriodAfterStake uint64 `yaml:"claimLockPeriodAfterStake"`
	ClaimLockPeriodAfterClaim uint64 `yaml:"claimLockPeriodAfterClaim"`
}

// AccountConfig pre-funds an address with deposit tokens.
type AccountConfig struct {
	Address Address `yaml:"address"`
	Balance *Amount `yaml:"balance"`
}

// MorConfig names the reward token minted on L2.
type MorConfig struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// Config is the playground genesis: one protocol deployment across both
// chain sides, backed by loopback transports.
type Config struct {
	ProtocolName string  `yaml:"protocolName"`
	Owner        Address `yaml:"owner"`
	Treasury     Address `yaml:"treasury"`
	BaseFee      *Amount `yaml:"baseFee"`
	LzFee        *Amount `yaml:"lzFee"`
	L2ChainID    uint16  `yaml:"l2ChainID"`
	LaunchTime   uint64  `yaml:"launchTime"`

	Mor      MorConfig       `yaml:"mor"`
	Accounts []AccountConfig `yaml:"accounts"`
	Pools    []PoolConfig    `yaml:"pools"`
}

// Load reads a config from YAML in strict mode.
func Load(r io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var config Config
	if err := decoder.Decode(&config); err != nil {
		return nil, errors.Wrap(err, "decode genesis config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads a config from a YAML file.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open genesis config")
	}
	defer f.Close()
	return Load(f)
}

// Validate checks the config for values the contracts would reject at
// deployment time.
func (c *Config) Validate() error {
	if c.ProtocolName == "" {
		return errors.New("protocolName must be set")
	}
	if c.Owner == (Address{}) {
		return errors.New("owner must be set")
	}
	if c.Treasury == (Address{}) {
		return errors.New("treasury must be set")
	}
	if c.BaseFee != nil && c.BaseFee.Int().Cmp(protocol.Precision) > 0 {
		return errors.New("baseFee must not exceed 100%")
	}
	if c.L2ChainID == 0 {
		return errors.New("l2ChainID must not be 0")
	}
	if c.Mor.Name == "" || c.Mor.Symbol == "" {
		return errors.New("mor token name and symbol must be set")
	}
	for i, account := range c.Accounts {
		if account.Balance == nil || account.Balance.Int().Sign() < 1 {
			return errors.Errorf("accounts[%d]: balance must be a positive integer", i)
		}
	}
	for i, pool := range c.Pools {
		if pool.PayoutStart <= c.LaunchTime {
			return errors.Errorf("pools[%d]: payoutStart must be after launchTime", i)
		}
		if pool.DecreaseInterval == 0 {
			return errors.Errorf("pools[%d]: decreaseInterval must not be 0", i)
		}
		if pool.InitialReward == nil {
			return errors.Errorf("pools[%d]: initialReward must be set", i)
		}
	}
	return nil
}
