// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the read-only HTTP surface of a protocol deployment.
package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/morlabs/distribution/api/pools"
	"github.com/morlabs/distribution/api/registry"
	"github.com/morlabs/distribution/api/restutil"
	"github.com/morlabs/distribution/distribution"
	"github.com/morlabs/distribution/factory"
	"github.com/morlabs/distribution/log"
	"github.com/morlabs/distribution/metrics"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EnableMetrics   bool
	EnableReqLogger bool
}

// New returns the api router over one Distribution instance and the factory
// that deployed it.
func New(
	dist *distribution.Distribution,
	f *factory.BaseFactory,
	now func() uint64,
	opts Options,
) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	pools.New(dist, now).
		Mount(router, "/pools")
	registry.New(f).
		Mount(router, "/registry")

	router.Path("/health").Methods(http.MethodGet).HandlerFunc(
		restutil.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			return restutil.WriteJSON(w, restutil.M{"healthy": true})
		}))

	if opts.EnableMetrics {
		router.Path("/metrics").Handler(metrics.HTTPHandler())
		router.Use(metricsHandler)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = requestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP
}
