package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryExposesCounters(t *testing.T) {
	r := NewRegistry()
	r.Submissions.WithLabelValues("success").Inc()
	r.Submissions.WithLabelValues("success").Inc()
	r.Warnings.WithLabelValues("degraded_write", "recording").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Submissions.WithLabelValues("success")))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `storefront_order_submissions_total{outcome="success"} 2`)
	assert.Contains(t, string(body), `storefront_order_warnings_total{kind="degraded_write",step="recording"} 1`)
}
