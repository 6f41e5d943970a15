package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordScan(t *testing.T) {
	before := testutil.ToFloat64(scansTotal.WithLabelValues(ScanCacheHit))
	RecordScan(ScanCacheHit, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(scansTotal.WithLabelValues(ScanCacheHit)))
}

func TestRecordRejectionAndGauge(t *testing.T) {
	before := testutil.ToFloat64(iconsRejectedTotal.WithLabelValues("file_too_large"))
	RecordRejection("file_too_large")
	assert.Equal(t, before+1, testutil.ToFloat64(iconsRejectedTotal.WithLabelValues("file_too_large")))

	SetCustomIcons(7)
	assert.Equal(t, float64(7), testutil.ToFloat64(customIcons))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /icons/{key}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := Middleware(mux)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /icons/{key}", "418"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/icons/custom_logo.svg", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /icons/{key}", "418")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordCatalogBuild()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "iconward_catalog_builds_total"))
}
