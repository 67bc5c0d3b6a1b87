package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iyhunko/product-list-sync/internal/config"
	"github.com/iyhunko/product-list-sync/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	assert.Equal(t, metrics.ResultSuccess, metrics.Result(nil))
	assert.Equal(t, metrics.ResultFailure, metrics.Result(errors.New("boom")))
}

func TestNewServer(t *testing.T) {
	// given
	metrics.StaleLoadsDiscarded.Inc()
	srv := metrics.NewServer(&config.Config{MetricsServer: config.Server{Port: "9090"}})

	// when
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// then
	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "product_collection_stale_loads_discarded_total")
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.StaleLoadsDiscarded), float64(1))
}
