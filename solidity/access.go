// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/morlabs/distribution/reverts"
)

var (
	slotOwner  = common.Hash(crypto.Keccak256Hash([]byte("access-owner")))
	slotPaused = common.Hash(crypto.Keccak256Hash([]byte("access-paused")))
)

// Ownable stores the owner account of a contract and gates mutations to it.
type Ownable struct {
	owner *Address
}

func NewOwnable(context *Context) *Ownable {
	return &Ownable{owner: NewAddress(context, slotOwner)}
}

func (o *Ownable) Init(owner common.Address) {
	o.owner.Set(owner)
}

func (o *Ownable) Owner() (common.Address, error) {
	return o.owner.Get()
}

// Check returns the canonical Ownable revert when caller is not the owner.
func (o *Ownable) Check(caller common.Address) error {
	owner, err := o.owner.Get()
	if err != nil {
		return err
	}
	if owner != caller {
		return reverts.ErrNotOwner
	}
	return nil
}

// TransferOwnership hands the contract to a new owner.
func (o *Ownable) TransferOwnership(caller, newOwner common.Address) error {
	if err := o.Check(caller); err != nil {
		return err
	}
	o.owner.Set(newOwner)
	return nil
}

// Pausable stores the paused flag of a contract.
type Pausable struct {
	paused *Bool
}

func NewPausable(context *Context) *Pausable {
	return &Pausable{paused: NewBool(context, slotPaused)}
}

func (p *Pausable) Paused() (bool, error) {
	return p.paused.Get()
}

func (p *Pausable) SetPaused(paused bool) {
	p.paused.Set(paused)
}

// Check returns the canonical Pausable revert when the contract is paused.
func (p *Pausable) Check() error {
	paused, err := p.paused.Get()
	if err != nil {
		return err
	}
	if paused {
		return reverts.ErrPaused
	}
	return nil
}
