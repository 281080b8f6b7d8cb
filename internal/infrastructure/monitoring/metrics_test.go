package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()

	m.RecordFetch("success", 1200*time.Millisecond)
	m.RecordFetch("timeout", 10*time.Second)
	m.SessionOpened()
	m.SessionClosed(true)
	m.SessionOpenFailed()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `rendergate_fetches_total{outcome="success"} 1`)
	assert.Contains(t, body, `rendergate_fetches_total{outcome="timeout"} 1`)
	assert.Contains(t, body, "rendergate_sessions_opened_total 1")
	assert.Contains(t, body, "rendergate_sessions_closed_total 1")
	assert.Contains(t, body, "rendergate_session_open_failures_total 1")
}

func TestMetricsIndependentRegistries(t *testing.T) {
	// Each collector owns its registry, so two can coexist in one process.
	a := NewMetrics()
	b := NewMetrics()

	a.RecordFetch("success", time.Second)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	b.Handler().ServeHTTP(w, req)

	assert.NotContains(t, w.Body.String(), `rendergate_fetches_total{outcome="success"} 1`)
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	mw := httptest.NewRecorder()
	m.Handler().ServeHTTP(mw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, mw.Body.String(), `rendergate_http_requests_total{method="GET",path="/health",status="200"} 1`)
}
