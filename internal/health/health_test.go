package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func Test_HealthzAlwaysReportsOK(t *testing.T) {
	reporter := NewReporter(prometheus.NewRegistry())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	reporter.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func Test_ReadyzReflectsLastRunOutcome(t *testing.T) {
	reporter := NewReporter(prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	reporter.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	reporter.RecordSuccess(42)
	rec = httptest.NewRecorder()
	reporter.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	reporter.RecordFailure(errors.New("download failed"))
	rec = httptest.NewRecorder()
	reporter.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "download failed")
}
