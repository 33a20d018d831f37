// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pools exposes read-only access to reward pools and staker
// positions.
package pools

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/morlabs/distribution/api/restutil"
	"github.com/morlabs/distribution/distribution"
	"github.com/morlabs/distribution/reverts"
)

// Pools serves the reward pool endpoints of one Distribution instance.
type Pools struct {
	dist *distribution.Distribution
	now  func() uint64
}

func New(dist *distribution.Distribution, now func() uint64) *Pools {
	return &Pools{dist: dist, now: now}
}

func parsePoolID(req *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return 0, restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func parseAddress(req *http.Request) (common.Address, error) {
	hexAddr := mux.Vars(req)["address"]
	if !common.IsHexAddress(hexAddr) {
		return common.Address{}, restutil.BadRequest(errors.New("invalid address"))
	}
	return common.HexToAddress(hexAddr), nil
}

// wrapError turns a pool lookup revert into a 404 and passes infrastructure
// errors through as 500s.
func wrapError(err error) error {
	if reverts.IsRevertErr(err) {
		return restutil.NotFound(err)
	}
	return err
}

func (p *Pools) handleListPools(w http.ResponseWriter, _ *http.Request) error {
	count, err := p.dist.PoolCount()
	if err != nil {
		return err
	}
	list := make([]*Pool, 0, count)
	for id := uint64(0); id < count; id++ {
		pool, err := p.dist.GetPool(id)
		if err != nil {
			return err
		}
		list = append(list, convertPool(id, pool))
	}
	return restutil.WriteJSON(w, list)
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	id, err := parsePoolID(req)
	if err != nil {
		return err
	}
	pool, err := p.dist.GetPool(id)
	if err != nil {
		return wrapError(err)
	}
	return restutil.WriteJSON(w, convertPool(id, pool))
}

func (p *Pools) handleGetPoolData(w http.ResponseWriter, req *http.Request) error {
	id, err := parsePoolID(req)
	if err != nil {
		return err
	}
	if _, err := p.dist.GetPool(id); err != nil {
		return wrapError(err)
	}
	data, err := p.dist.GetPoolData(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertPoolData(data))
}

func (p *Pools) handleGetPoolLimits(w http.ResponseWriter, req *http.Request) error {
	id, err := parsePoolID(req)
	if err != nil {
		return err
	}
	if _, err := p.dist.GetPool(id); err != nil {
		return wrapError(err)
	}
	limits, err := p.dist.GetPoolLimits(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertPoolLimits(limits))
}

func (p *Pools) handleGetPeriodRewards(w http.ResponseWriter, req *http.Request) error {
	id, err := parsePoolID(req)
	if err != nil {
		return err
	}
	query := req.URL.Query()
	start, err := strconv.ParseUint(query.Get("start"), 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "start"))
	}
	end, err := strconv.ParseUint(query.Get("end"), 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "end"))
	}
	reward, err := p.dist.GetPeriodRewards(id, start, end)
	if err != nil {
		return wrapError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"reward": (*math.HexOrDecimal256)(reward)})
}

func (p *Pools) handleGetUser(w http.ResponseWriter, req *http.Request) error {
	id, err := parsePoolID(req)
	if err != nil {
		return err
	}
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	if _, err := p.dist.GetPool(id); err != nil {
		return wrapError(err)
	}
	user, err := p.dist.GetUserData(id, addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertUserData(user))
}

func (p *Pools) handleGetUserReward(w http.ResponseWriter, req *http.Request) error {
	id, err := parsePoolID(req)
	if err != nil {
		return err
	}
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	at := p.now()
	if raw := req.URL.Query().Get("at"); raw != "" {
		at, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "at"))
		}
	}
	reward, err := p.dist.GetCurrentUserReward(id, addr, at)
	if err != nil {
		return wrapError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"reward": (*math.HexOrDecimal256)(reward), "at": at})
}

func (p *Pools) handleGetOverplus(w http.ResponseWriter, _ *http.Request) error {
	overplus, err := p.dist.Overplus()
	if err != nil {
		return err
	}
	deposited, err := p.dist.TotalDepositedInPublicPools()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{
		"overplus":       (*math.HexOrDecimal256)(overplus),
		"totalDeposited": (*math.HexOrDecimal256)(deposited),
	})
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(p.handleListPools))
	sub.Path("/overplus").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(p.handleGetOverplus))
	sub.Path("/{id:[0-9]+}").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{id:[0-9]+}/data").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPoolData))
	sub.Path("/{id:[0-9]+}/limits").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPoolLimits))
	sub.Path("/{id:[0-9]+}/rewards").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPeriodRewards))
	sub.Path("/{id:[0-9]+}/accounts/{address}").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(p.handleGetUser))
	sub.Path("/{id:[0-9]+}/accounts/{address}/reward").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(p.handleGetUserReward))
}
