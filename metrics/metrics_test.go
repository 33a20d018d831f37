// Copyright (c) 2025 The Morpheus Distribution developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopByDefault(t *testing.T) {
	assert.Nil(t, HTTPHandler())
	// noop meters must be safe to use
	Counter("noop_counter").Add(1)
	Gauge("noop_gauge").Set(42)
	CounterVec("noop_vec", []string{"op"}).AddWithLabel(1, map[string]string{"op": "stake"})
}

func TestPrometheusMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	Counter("stake_count").Add(3)
	Gauge("total_deposited").Set(1000)
	GaugeVec("pool_deposited", []string{"pool"}).SetWithLabel(7, map[string]string{"pool": "0"})

	// same name returns the same meter
	assert.Equal(t, Counter("stake_count"), Counter("stake_count"))

	handler := HTTPHandler()
	require.NotNil(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), "mor_metrics_stake_count"))
	assert.True(t, strings.Contains(string(body), "mor_metrics_total_deposited"))
}
