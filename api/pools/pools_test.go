// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morlabs/distribution/bridges"
	"github.com/morlabs/distribution/distribution"
	"github.com/morlabs/distribution/feeconfig"
	"github.com/morlabs/distribution/l1sender"
	"github.com/morlabs/distribution/state"
	"github.com/morlabs/distribution/token"
)

var (
	owner    = common.BytesToAddress([]byte("owner"))
	staker   = common.BytesToAddress([]byte("staker"))
	treasury = common.BytesToAddress([]byte("treasury"))
)

func newTestServer(t *testing.T) *httptest.Server {
	st := state.New()

	stETH := token.NewDepositToken(common.BytesToAddress([]byte("stETH")), st)
	wstETH := token.NewWrappedDepositToken(common.BytesToAddress([]byte("wstETH")), st, stETH)
	endpoint := bridges.NewLoopbackEndpoint(common.BytesToAddress([]byte("endpoint")), big.NewInt(0))
	gateway := bridges.NewLoopbackGateway(common.BytesToAddress([]byte("escrow")), wstETH)

	fees := feeconfig.New(common.BytesToAddress([]byte("fee-config")), st)
	require.NoError(t, fees.Init(owner, treasury, big.NewInt(0)))

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

	pool := &distribution.Pool{
		PayoutStart:      1000,
		DecreaseInterval: 100,
		InitialReward:    big.NewInt(100),
		RewardDecrease:   big.NewInt(0),
		MinimalStake:     big.NewInt(10),
		IsPublic:         true,
	}
	_, err := dist.CreatePool(owner, pool, 500)
	require.NoError(t, err)

	require.NoError(t, stETH.Mint(staker, big.NewInt(100)))
	require.NoError(t, stETH.Approve(staker, dist.Address(), big.NewInt(100)))
	require.NoError(t, dist.Stake(staker, 0, big.NewInt(100), 0, 600))

	router := mux.NewRouter()
	New(dist, func() uint64 { return 1100 }).Mount(router, "/pools")

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	return body, res.StatusCode
}

func TestListPools(t *testing.T) {
	server := newTestServer(t)

	body, status := httpGet(t, server.URL+"/pools")
	require.Equal(t, http.StatusOK, status)

	var list []*Pool
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, uint64(0), list[0].ID)
	assert.Equal(t, uint64(1000), list[0].PayoutStart)
	assert.True(t, list[0].IsPublic)
}

func TestGetPool(t *testing.T) {
	server := newTestServer(t)

	body, status := httpGet(t, server.URL+"/pools/0")
	require.Equal(t, http.StatusOK, status)

	var pool Pool
	require.NoError(t, json.Unmarshal(body, &pool))
	assert.Equal(t, uint64(100), pool.DecreaseInterval)
	initial := big.Int(pool.InitialReward)
	assert.Equal(t, big.NewInt(100), &initial)

	_, status = httpGet(t, server.URL+"/pools/7")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetPoolData(t *testing.T) {
	server := newTestServer(t)

	body, status := httpGet(t, server.URL+"/pools/0/data")
	require.Equal(t, http.StatusOK, status)

	var data PoolData
	require.NoError(t, json.Unmarshal(body, &data))
	assert.Equal(t, uint64(600), data.LastUpdate)
	total := big.Int(data.TotalVirtualDeposited)
	assert.Equal(t, big.NewInt(100), &total)
}

func TestGetUser(t *testing.T) {
	server := newTestServer(t)

	body, status := httpGet(t, server.URL+"/pools/0/accounts/"+staker.Hex())
	require.Equal(t, http.StatusOK, status)

	var user UserData
	require.NoError(t, json.Unmarshal(body, &user))
	deposited := big.Int(user.Deposited)
	assert.Equal(t, big.NewInt(100), &deposited)
	assert.Equal(t, uint64(600), user.LastStake)

	_, status = httpGet(t, server.URL+"/pools/0/accounts/not-an-address")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetUserReward(t *testing.T) {
	server := newTestServer(t)

	// the clock is pinned to 1100, one full interval after payout start
	body, status := httpGet(t, server.URL+"/pools/0/accounts/"+staker.Hex()+"/reward")
	require.Equal(t, http.StatusOK, status)

	var res struct {
		Reward *math.HexOrDecimal256 `json:"reward"`
		At     uint64                `json:"at"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, uint64(1100), res.At)
	assert.Equal(t, big.NewInt(100), (*big.Int)(res.Reward))

	body, status = httpGet(t, server.URL+"/pools/0/accounts/"+staker.Hex()+"/reward?at=1200")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, uint64(1200), res.At)
	assert.Equal(t, big.NewInt(200), (*big.Int)(res.Reward))
}

func TestGetPeriodRewards(t *testing.T) {
	server := newTestServer(t)

	body, status := httpGet(t, server.URL+"/pools/0/rewards?start=1000&end=1100")
	require.Equal(t, http.StatusOK, status)

	var res struct {
		Reward *math.HexOrDecimal256 `json:"reward"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, big.NewInt(100), (*big.Int)(res.Reward))

	_, status = httpGet(t, server.URL+"/pools/0/rewards?start=abc&end=1100")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetOverplus(t *testing.T) {
	server := newTestServer(t)

	body, status := httpGet(t, server.URL+"/pools/overplus")
	require.Equal(t, http.StatusOK, status)

	var res struct {
		Overplus       *math.HexOrDecimal256 `json:"overplus"`
		TotalDeposited *math.HexOrDecimal256 `json:"totalDeposited"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, big.NewInt(0), (*big.Int)(res.Overplus))
	assert.Equal(t, big.NewInt(100), (*big.Int)(res.TotalDeposited))
}
