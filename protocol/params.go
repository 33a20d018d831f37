// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package protocol holds system-wide constants and the deterministic
// derivation rules shared by the factories and their counterpart predictors.
package protocol

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Precision is the fixed point scale: fees of 100% and reward-rate
// accumulators are expressed against this base.
var Precision = new(big.Int).Exp(big.NewInt(10), big.NewInt(25), nil)

// OneToken is one whole token in its smallest unit.
var OneToken = big.NewInt(1e18)

// PoolType identifies a deployable contract flavour within a factory.
type PoolType = uint8

const (
	PoolDistribution = PoolType(iota)
	PoolL1Sender
	PoolL2MessageReceiver
	PoolL2TokenReceiver
)

// proxyCodeHash stands in for the init code hash of the deployed proxy in the
// create2-style address derivation. It only needs to be a fixed constant for
// addresses to be predictable.
var proxyCodeHash = crypto.Keccak256([]byte("freezable-beacon-proxy"))

// Salt derives the one-time deployment claim for (deployer, protocol name,
// pool type). Same inputs always yield the same salt.
func Salt(deployer common.Address, protocolName string, poolType PoolType) common.Hash {
	return crypto.Keccak256Hash(deployer.Bytes(), []byte(protocolName), []byte{poolType})
}

// CreateProxyAddress computes the address a factory will deploy a proxy at
// for the given salt. It is a pure function: the predict path and the deploy
// path both call it, which is what breaks the cross-chain wiring circularity.
func CreateProxyAddress(factory common.Address, salt common.Hash) common.Address {
	return crypto.CreateAddress2(factory, salt, proxyCodeHash)
}
