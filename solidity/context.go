// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solidity offers storage abstractions for native contracts,
// mirroring the layout primitives of a Solidity contract: single slots,
// mappings and the owner/pause access patterns.
package solidity

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/morlabs/distribution/state"
)

// Context binds a contract address to the world state. All storage helpers
// of a contract share one context.
type Context struct {
	address common.Address
	state   *state.State
}

func NewContext(address common.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() common.Address {
	return c.address
}

// SlotPosition derives a storage slot position from a label.
func SlotPosition(label string) common.Hash {
	return crypto.Keccak256Hash([]byte(label))
}

func (c *Context) State() *state.State {
	return c.state
}
