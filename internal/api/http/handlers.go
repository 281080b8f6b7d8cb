package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rendergate/rendergate/internal/api/middleware"
	"github.com/rendergate/rendergate/internal/browser"
	"github.com/rendergate/rendergate/internal/infrastructure/config"
	"github.com/rendergate/rendergate/internal/infrastructure/logging"
	"github.com/rendergate/rendergate/internal/infrastructure/monitoring"
)

// ServiceName identifies this service in health and info payloads.
const ServiceName = "rendergate"

// Fetch outcome labels recorded in metrics.
const (
	outcomeSuccess    = "success"
	outcomeBadRequest = "bad_request"
	outcomeUpstream   = "upstream_unavailable"
	outcomeTimeout    = "timeout"
	outcomeBrowserErr = "browser_error"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	opener  browser.Opener
	cfg     *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	version *browser.VersionInfo
}

// NewHandlers creates a new handler set
func NewHandlers(opener browser.Opener, cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{
		opener:  opener,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// WithBackendVersion records the probed backend version for /info.
func (h *Handlers) WithBackendVersion(v *browser.VersionInfo) *Handlers {
	h.version = v
	return h
}

// Fetch handles GET /?url=<target>: one browser session per request,
// opened, driven through navigate / wait / read, and always closed.
func (h *Handlers) Fetch(c *gin.Context) {
	start := time.Now()
	target := c.Query("url")

	if target == "" {
		h.finish(c, start, outcomeBadRequest, http.StatusBadRequest, "URL parameter is required")
		return
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		h.finish(c, start, outcomeBadRequest, http.StatusBadRequest, "URL must start with http:// or https://")
		return
	}

	log := h.logger.With(
		zap.String("url", target),
		zap.String("request_id", middleware.GetRequestID(c)),
	)
	log.Info("Fetching URL")

	// The session must not inherit the caller's cancellation: a client
	// disconnect would kill the devtools connection before teardown runs,
	// leaking the remote page.
	sess, err := h.opener.Open(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		log.Error("Failed to create browser session", zap.Error(err))
		h.finish(c, start, outcomeUpstream, http.StatusInternalServerError,
			"Failed to connect to remote browser at "+h.cfg.Browser.Endpoint)
		return
	}
	// Teardown on every exit path; Close never raises.
	defer sess.Close()

	if err := sess.Navigate(target); err != nil {
		h.fetchError(c, log, start, err)
		return
	}

	if err := sess.WaitReady(); err != nil {
		h.fetchError(c, log, start, err)
		return
	}

	html, err := sess.ReadDocument()
	if err != nil {
		h.fetchError(c, log, start, err)
		return
	}

	log.Info("Successfully fetched page", zap.Duration("duration", time.Since(start)))
	h.metrics.RecordFetch(outcomeSuccess, time.Since(start))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// fetchError maps a session failure to its HTTP response.
func (h *Handlers) fetchError(c *gin.Context, log *zap.Logger, start time.Time, err error) {
	switch {
	case browser.IsTimeout(err):
		log.Error("Timeout while loading page", zap.Error(err))
		h.finish(c, start, outcomeTimeout, http.StatusRequestTimeout, "Page load timeout")
	case browser.IsProtocol(err), browser.IsConnection(err):
		log.Error("Browser error", zap.Error(err))
		h.finish(c, start, outcomeBrowserErr, http.StatusInternalServerError, "Browser error occurred")
	default:
		log.Error("Unexpected error", zap.Error(err))
		h.finish(c, start, outcomeBrowserErr, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handlers) finish(c *gin.Context, start time.Time, outcome string, status int, detail string) {
	h.metrics.RecordFetch(outcome, time.Since(start))
	c.JSON(status, gin.H{"error": detail})
}

// Health handles the health check. It reports the service itself only
// and never consults the remote backend.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// Info describes the service and its configured backend.
func (h *Handlers) Info(c *gin.Context) {
	payload := gin.H{
		"title":            "Rendergate",
		"description":      "HTTP service that fetches rendered web pages through a remote browser",
		"browser_endpoint": h.cfg.Browser.Endpoint,
		"usage":            "GET /?url=<target_url>",
		"example":          "/?url=https://example.com",
	}
	if h.version != nil {
		payload["browser_version"] = h.version.Browser
		payload["protocol_version"] = h.version.ProtocolVersion
	}
	c.JSON(http.StatusOK, payload)
}
