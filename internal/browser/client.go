package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/rendergate/rendergate/internal/infrastructure/logging"
	"github.com/rendergate/rendergate/internal/infrastructure/monitoring"
)

// Opener opens one browser session per call.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// Session is one exclusively-owned page on the automation backend,
// scoped to a single request and released via Close.
type Session interface {
	// Navigate loads the target URL, bounded by the page-load timeout.
	Navigate(url string) error
	// WaitReady blocks until the document body exists, bounded by the
	// ready timeout.
	WaitReady() error
	// ReadDocument returns the full serialized HTML of the current DOM.
	ReadDocument() (string, error)
	// Close releases the session. Failures are logged, never returned;
	// Close is safe to call on every exit path.
	Close()
}

// Client opens sessions against a remote automation backend, or against
// a locally launched browser when launchLocal is set.
type Client struct {
	endpoint    string
	launchLocal bool
	profile     Profile
	logger      *logging.Logger
	metrics     *monitoring.Metrics
}

// NewClient creates a session client.
func NewClient(endpoint string, launchLocal bool, profile Profile, logger *logging.Logger) *Client {
	return &Client{
		endpoint:    endpoint,
		launchLocal: launchLocal,
		profile:     profile,
		logger:      logger,
	}
}

// WithMetrics attaches a metrics collector for session lifecycle counts.
func (c *Client) WithMetrics(m *monitoring.Metrics) *Client {
	c.metrics = m
	return c
}

// Endpoint returns the configured backend address.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Open connects to the backend and creates one page in a fresh incognito
// context with the capability profile applied.
func (c *Client) Open(ctx context.Context) (Session, error) {
	sess, err := c.open(ctx)
	if c.metrics != nil {
		if err != nil {
			c.metrics.SessionOpenFailed()
		} else {
			c.metrics.SessionOpened()
		}
	}
	return sess, err
}

func (c *Client) open(ctx context.Context) (Session, error) {
	controlURL, launch, err := c.resolve()
	if err != nil {
		return nil, newError(CodeConnection, err, "failed to connect to remote browser at %s", c.endpoint)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if launch != nil {
			launch.Kill()
		}
		return nil, newError(CodeConnection, err, "failed to connect to remote browser at %s", c.endpoint)
	}

	sess := &pageSession{
		browser:  b,
		launcher: launch,
		profile:  c.profile,
		logger:   c.logger,
		metrics:  c.metrics,
	}

	incognito, err := b.Incognito()
	if err != nil {
		sess.teardown()
		return nil, newError(CodeProtocol, err, "failed to create browser context")
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		sess.teardown()
		return nil, newError(CodeProtocol, err, "failed to create page")
	}
	sess.page = page

	c.applyProfile(page)
	return sess, nil
}

// resolve produces a devtools control URL, launching a local browser
// when configured to do so.
func (c *Client) resolve() (string, *launcher.Launcher, error) {
	if !c.launchLocal {
		u, err := launcher.ResolveURL(c.endpoint)
		if err != nil {
			return "", nil, fmt.Errorf("resolve %s: %w", c.endpoint, err)
		}
		return u, nil, nil
	}

	launch := launcher.New().Headless(c.profile.Headless)
	if c.profile.NoSandbox {
		launch = launch.Set(flags.NoSandbox)
	}
	launch = launch.
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("window-size", fmt.Sprintf("%d,%d", c.profile.WindowWidth, c.profile.WindowHeight))

	u, err := launch.Launch()
	if err != nil {
		return "", nil, fmt.Errorf("launch browser: %w", err)
	}
	return u, launch, nil
}

// applyProfile sets viewport, user agent, and blocked sub-resources on
// the page. Failures are logged and tolerated; a partially applied
// profile still yields a usable session.
func (c *Client) applyProfile(page *rod.Page) {
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             c.profile.WindowWidth,
		Height:            c.profile.WindowHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		c.logger.Warn("Failed to set viewport", zap.Error(err))
	}

	if c.profile.UserAgent != "" {
		if err := (proto.NetworkSetUserAgentOverride{
			UserAgent: c.profile.UserAgent,
		}).Call(page); err != nil {
			c.logger.Warn("Failed to set user agent", zap.Error(err))
		}
	}

	if patterns := c.profile.blockedPatterns(); len(patterns) > 0 {
		if err := (proto.NetworkEnable{}).Call(page); err != nil {
			c.logger.Warn("Failed to enable network domain", zap.Error(err))
		} else if err := (proto.NetworkSetBlockedURLs{Urls: patterns}).Call(page); err != nil {
			c.logger.Warn("Failed to block sub-resources", zap.Error(err))
		}
	}
}
