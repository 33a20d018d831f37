// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/morlabs/distribution/factory"
	"github.com/morlabs/distribution/state"
)

// Open builds the environment on fresh state and reattaches over state that
// already carries a deployment.
func (c *Config) Open(st *state.State) (*Deployment, error) {
	probe := factory.NewL1Factory(systemAddress("l1-factory"), st, factory.NewBeacon(systemAddress("beacon"), st))
	owner, err := probe.Owner()
	if err != nil {
		return nil, err
	}
	if owner == (common.Address{}) {
		return c.Build(st)
	}
	return c.Attach(st)
}
