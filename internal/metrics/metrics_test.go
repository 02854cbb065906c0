// AngelaMos | 2026
// metrics_test.go

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveTransition(t *testing.T) {
	m := New()

	m.ObserveTransition("blog", "approve", "applied")
	m.ObserveTransition("blog", "approve", "applied")
	m.ObserveTransition("office", "reject", "forbidden")

	assert.InDelta(t, 2, testutil.ToFloat64(
		m.transitions.WithLabelValues("blog", "approve", "applied"),
	), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(
		m.transitions.WithLabelValues("office", "reject", "forbidden"),
	), 0)
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObserveInvitation("sent")

	assert.InDelta(t, 1, testutil.ToFloat64(a.invitations.WithLabelValues("sent")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.invitations.WithLabelValues("sent")), 0)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/blogs/posts", http.MethodGet, http.StatusOK, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/api/blogs/posts",status="200"} 1`)
}
