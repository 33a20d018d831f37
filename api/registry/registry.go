// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry exposes the factory's deployment registry.
package registry

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/morlabs/distribution/api/restutil"
	"github.com/morlabs/distribution/factory"
	"github.com/morlabs/distribution/protocol"
)

const defaultPageLimit = 100

// Registry serves the deployment records of one factory.
type Registry struct {
	factory *factory.BaseFactory
}

func New(f *factory.BaseFactory) *Registry {
	return &Registry{factory: f}
}

func parseDeployer(req *http.Request) (common.Address, error) {
	hexAddr := mux.Vars(req)["deployer"]
	if !common.IsHexAddress(hexAddr) {
		return common.Address{}, restutil.BadRequest(errors.New("invalid deployer address"))
	}
	return common.HexToAddress(hexAddr), nil
}

func (r *Registry) handleCountProtocols(w http.ResponseWriter, req *http.Request) error {
	deployer, err := parseDeployer(req)
	if err != nil {
		return err
	}
	count, err := r.factory.CountProtocols(deployer)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"count": count})
}

func (r *Registry) handleListProtocols(w http.ResponseWriter, req *http.Request) error {
	deployer, err := parseDeployer(req)
	if err != nil {
		return err
	}
	query := req.URL.Query()
	var offset uint64
	if raw := query.Get("offset"); raw != "" {
		offset, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "offset"))
		}
	}
	limit := uint64(defaultPageLimit)
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "limit"))
		}
	}
	names, err := r.factory.ListProtocols(deployer, offset, limit)
	if err != nil {
		return err
	}
	if names == nil {
		names = []string{}
	}
	return restutil.WriteJSON(w, names)
}

func (r *Registry) handleGetProxy(w http.ResponseWriter, req *http.Request) error {
	deployer, err := parseDeployer(req)
	if err != nil {
		return err
	}
	vars := mux.Vars(req)
	poolType, err := strconv.ParseUint(vars["poolType"], 10, 8)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "poolType"))
	}
	addr, err := r.factory.GetProxyAddress(deployer, vars["name"], protocol.PoolType(poolType))
	if err != nil {
		return err
	}
	if addr == (common.Address{}) {
		return restutil.NotFound(errors.New("no proxy deployed"))
	}
	proxy, err := r.factory.GetProxy(deployer, vars["name"], protocol.PoolType(poolType))
	if err != nil {
		return err
	}
	frozen, err := proxy.IsFrozen()
	if err != nil {
		return err
	}
	impl, err := proxy.Implementation()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{
		"address":        addr,
		"frozen":         frozen,
		"implementation": impl,
	})
}

func (r *Registry) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{deployer}").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(r.handleCountProtocols))
	sub.Path("/{deployer}/protocols").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(r.handleListProtocols))
	sub.Path("/{deployer}/protocols/{name}/{poolType:[0-9]+}").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(r.handleGetProxy))
}
