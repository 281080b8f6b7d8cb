package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendergate/rendergate/internal/browser"
	"github.com/rendergate/rendergate/internal/infrastructure/config"
	"github.com/rendergate/rendergate/internal/infrastructure/logging"
	"github.com/rendergate/rendergate/internal/infrastructure/monitoring"
)

// fakeSession records calls so tests can verify the one-session-per-request
// lifecycle.
type fakeSession struct {
	html        string
	navigateErr error
	readyErr    error
	readErr     error

	navigatedTo string
	navigates   int
	waits       int
	reads       int
	closes      int
}

func (s *fakeSession) Navigate(url string) error {
	s.navigates++
	s.navigatedTo = url
	return s.navigateErr
}

func (s *fakeSession) WaitReady() error {
	s.waits++
	return s.readyErr
}

func (s *fakeSession) ReadDocument() (string, error) {
	s.reads++
	if s.readErr != nil {
		return "", s.readErr
	}
	return s.html, nil
}

func (s *fakeSession) Close() {
	s.closes++
}

type fakeOpener struct {
	sess    *fakeSession
	openErr error
	opens   int
	openCtx context.Context
}

func (o *fakeOpener) Open(ctx context.Context) (browser.Session, error) {
	o.opens++
	o.openCtx = ctx
	if o.openErr != nil {
		return nil, o.openErr
	}
	return o.sess, nil
}

func setupRouter(t *testing.T, opener browser.Opener) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handlers := NewHandlers(opener, config.Default(), logging.NewNop(), monitoring.NewMetrics())
	router := gin.New()
	router.GET("/", handlers.Fetch)
	router.GET("/health", handlers.Health)
	router.GET("/info", handlers.Info)
	return router
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestFetchMissingURL(t *testing.T) {
	opener := &fakeOpener{sess: &fakeSession{}}
	router := setupRouter(t, opener)

	w := doGet(router, "/")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "URL parameter is required")
	assert.Equal(t, 0, opener.opens, "no session should be opened for invalid input")
}

func TestFetchMalformedURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"ftp scheme", "ftp://example.com"},
		{"no scheme", "example.com"},
		{"file scheme", "file:///etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := &fakeOpener{sess: &fakeSession{}}
			router := setupRouter(t, opener)

			w := doGet(router, "/?url="+tt.url)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "URL must start with http:// or https://")
			assert.Equal(t, 0, opener.opens)
		})
	}
}

func TestFetchSuccess(t *testing.T) {
	sess := &fakeSession{html: "<html><head></head><body>Hello</body></html>"}
	opener := &fakeOpener{sess: sess}
	router := setupRouter(t, opener)

	w := doGet(router, "/?url=https://example.com")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Find("body").Text())

	// Exactly one session, driven through the full flow, closed once.
	assert.Equal(t, 1, opener.opens)
	assert.Equal(t, 1, sess.navigates)
	assert.Equal(t, "https://example.com", sess.navigatedTo)
	assert.Equal(t, 1, sess.waits)
	assert.Equal(t, 1, sess.reads)
	assert.Equal(t, 1, sess.closes)
}

func TestFetchReadinessTimeout(t *testing.T) {
	sess := &fakeSession{
		readyErr: &browser.Error{Code: browser.CodeReadiness, Message: "body never appeared"},
	}
	opener := &fakeOpener{sess: sess}
	router := setupRouter(t, opener)

	w := doGet(router, "/?url=https://slow.example.com")

	assert.Equal(t, http.StatusRequestTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "Page load timeout")
	assert.Equal(t, 1, sess.closes, "session must be closed on timeout")
	assert.Equal(t, 0, sess.reads)
}

func TestFetchNavigationTimeout(t *testing.T) {
	sess := &fakeSession{
		navigateErr: &browser.Error{Code: browser.CodeNavigation, Message: "page never began loading"},
	}
	opener := &fakeOpener{sess: sess}
	router := setupRouter(t, opener)

	w := doGet(router, "/?url=https://slow.example.com")

	assert.Equal(t, http.StatusRequestTimeout, w.Code)
	assert.Equal(t, 1, sess.closes)
	assert.Equal(t, 0, sess.waits)
}

func TestFetchUpstreamUnavailable(t *testing.T) {
	opener := &fakeOpener{
		openErr: &browser.Error{Code: browser.CodeConnection, Message: "connection refused"},
	}
	router := setupRouter(t, opener)

	w := doGet(router, "/?url=https://example.com")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Detail must name the configured endpoint.
	assert.Contains(t, w.Body.String(), "http://localhost:4444/wd/hub")
	assert.Equal(t, 1, opener.opens)
}

func TestFetchProtocolError(t *testing.T) {
	sess := &fakeSession{
		readErr: &browser.Error{Code: browser.CodeProtocol, Message: "target crashed"},
	}
	opener := &fakeOpener{sess: sess}
	router := setupRouter(t, opener)

	w := doGet(router, "/?url=https://example.com")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Browser error occurred")
	assert.Equal(t, 1, sess.closes)
}

func TestFetchUnexpectedError(t *testing.T) {
	sess := &fakeSession{navigateErr: errors.New("boom")}
	opener := &fakeOpener{sess: sess}
	router := setupRouter(t, opener)

	w := doGet(router, "/?url=https://example.com")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.Equal(t, 1, sess.closes)
}

func TestFetchClosesSessionExactlyOncePerRequest(t *testing.T) {
	sess := &fakeSession{html: "<html><body>ok</body></html>"}
	opener := &fakeOpener{sess: sess}
	router := setupRouter(t, opener)

	for i := 1; i <= 3; i++ {
		doGet(router, "/?url=https://example.com")
		assert.Equal(t, i, opener.opens)
		assert.Equal(t, i, sess.closes)
	}
}

func TestFetchSurvivesCallerDisconnect(t *testing.T) {
	sess := &fakeSession{html: "<html><body>ok</body></html>"}
	opener := &fakeOpener{sess: sess}
	router := setupRouter(t, opener)

	// Simulate a client that has already gone away.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/?url=https://example.com", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.NotNil(t, opener.openCtx)
	assert.NoError(t, opener.openCtx.Err(), "session context must not carry the caller's cancellation")
	assert.Equal(t, 1, sess.closes, "teardown must still run after a disconnect")
}

func TestHealthAlwaysHealthy(t *testing.T) {
	// Health must succeed even when the backend is unreachable.
	opener := &fakeOpener{
		openErr: &browser.Error{Code: browser.CodeConnection, Message: "connection refused"},
	}
	router := setupRouter(t, opener)

	w := doGet(router, "/health")

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, ServiceName, body["service"])
	assert.Equal(t, 0, opener.opens, "health must not touch the backend")
}

func TestInfo(t *testing.T) {
	router := setupRouter(t, &fakeOpener{sess: &fakeSession{}})

	w := doGet(router, "/info")

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "http://localhost:4444/wd/hub", body["browser_endpoint"])
	assert.Equal(t, "GET /?url=<target_url>", body["usage"])
	assert.Contains(t, body["example"], "https://example.com")
}

func TestInfoWithBackendVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handlers := NewHandlers(&fakeOpener{}, config.Default(), logging.NewNop(), monitoring.NewMetrics()).
		WithBackendVersion(&browser.VersionInfo{
			Browser:         "HeadlessChrome/120.0.6099.109",
			ProtocolVersion: "1.3",
		})
	router := gin.New()
	router.GET("/info", handlers.Info)

	w := doGet(router, "/info")

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "HeadlessChrome/120.0.6099.109", body["browser_version"])
	assert.Equal(t, "1.3", body["protocol_version"])
}
