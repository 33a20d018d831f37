// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts models contract revert reasons. A revert carries a short
// machine-parseable message identifying the exact failed precondition, so
// callers can tell "wait and retry" (a lock) apart from "fix your input"
// (validation) and "not authorized" failures.
package reverts

import (
	"errors"
)

// Reasons shared across contracts.
var (
	ErrNotOwner = New("Ownable: caller is not the owner")
	ErrPaused   = New("Pausable: paused")
)

type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// IsRevertErr reports whether err is (or wraps) a contract revert, as opposed
// to an infrastructure failure that should propagate to the host.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}
