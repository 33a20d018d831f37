// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRevertMessage(t *testing.T) {
	err := New("DS: nothing to stake")
	assert.Equal(t, "DS: nothing to stake", err.Error())
}

func TestIsRevertErr(t *testing.T) {
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr("not an error"))
	assert.False(t, IsRevertErr(errors.New("plain error")))

	assert.True(t, IsRevertErr(New("F: salt used")))
	assert.True(t, IsRevertErr(errors.Wrap(New("F: salt used"), "deploy")))
}
