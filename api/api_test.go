// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morlabs/distribution/bridges"
	"github.com/morlabs/distribution/distribution"
	"github.com/morlabs/distribution/factory"
	"github.com/morlabs/distribution/feeconfig"
	"github.com/morlabs/distribution/l1sender"
	"github.com/morlabs/distribution/protocol"
	"github.com/morlabs/distribution/state"
	"github.com/morlabs/distribution/token"
)

var (
	owner    = common.BytesToAddress([]byte("owner"))
	deployer = common.BytesToAddress([]byte("deployer"))
)

func newTestServer(t *testing.T) *httptest.Server {
	st := state.New()

	stETH := token.NewDepositToken(common.BytesToAddress([]byte("stETH")), st)
	wstETH := token.NewWrappedDepositToken(common.BytesToAddress([]byte("wstETH")), st, stETH)
	endpoint := bridges.NewLoopbackEndpoint(common.BytesToAddress([]byte("endpoint")), big.NewInt(0))
	gateway := bridges.NewLoopbackGateway(common.BytesToAddress([]byte("escrow")), wstETH)

	fees := feeconfig.New(common.BytesToAddress([]byte("fee-config")), st)
	require.NoError(t, fees.Init(owner, common.BytesToAddress([]byte("treasury")), big.NewInt(0)))

	dist := distribution.New(common.BytesToAddress([]byte("distribution")), st)
	sender := l1sender.New(common.BytesToAddress([]byte("l1-sender")), st)
	require.NoError(t, sender.Init(owner, dist.Address(),
		l1sender.RewardTokenConfig{
			Gateway:         endpoint,
			Receiver:        common.BytesToAddress([]byte("l2-receiver")),
			ReceiverChainID: 110,
		},
		l1sender.DepositTokenConfig{
			Token:        stETH,
			WrappedToken: wstETH,
			Gateway:      gateway,
			Receiver:     common.BytesToAddress([]byte("l2-token-receiver")),
		}))
	require.NoError(t, dist.Init(owner, stETH, sender, fees))

	beacon := factory.NewBeacon(common.BytesToAddress([]byte("beacon")), st)
	beacon.Init(owner)
	require.NoError(t, beacon.SetImplementations(owner,
		[]protocol.PoolType{protocol.PoolDistribution},
		[]common.Address{common.BytesToAddress([]byte("impl"))}))

	f := factory.NewBaseFactory(common.BytesToAddress([]byte("factory")), st, beacon)
	f.Init(owner)
	_, err := f.Deploy(deployer, "morpheus", protocol.PoolDistribution)
	require.NoError(t, err)

	handler := New(dist, f, func() uint64 { return 1000 }, Options{
		AllowedOrigins: "*",
		EnableMetrics:  false,
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func httpGetJSON(t *testing.T, url string, v interface{}) int {
	res, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	if res.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(body, v))
	}
	return res.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	var res map[string]bool
	status := httpGetJSON(t, server.URL+"/health", &res)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, res["healthy"])
}

func TestRegistryEndpoints(t *testing.T) {
	server := newTestServer(t)

	var count map[string]uint64
	status := httpGetJSON(t, server.URL+"/registry/"+deployer.Hex(), &count)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint64(1), count["count"])

	var names []string
	status = httpGetJSON(t, server.URL+"/registry/"+deployer.Hex()+"/protocols", &names)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"morpheus"}, names)

	var proxy struct {
		Address        common.Address `json:"address"`
		Frozen         bool           `json:"frozen"`
		Implementation common.Address `json:"implementation"`
	}
	url := server.URL + "/registry/" + deployer.Hex() + "/protocols/morpheus/0"
	status = httpGetJSON(t, url, &proxy)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, proxy.Frozen)
	assert.Equal(t, common.BytesToAddress([]byte("impl")), proxy.Implementation)

	status = httpGetJSON(t, server.URL+"/registry/"+deployer.Hex()+"/protocols/unknown/0", &proxy)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPoolsMounted(t *testing.T) {
	server := newTestServer(t)

	var list []interface{}
	status := httpGetJSON(t, server.URL+"/pools", &list)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list)
}
