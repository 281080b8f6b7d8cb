package browser

import (
	"context"
	"errors"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"

	"github.com/rendergate/rendergate/internal/infrastructure/logging"
	"github.com/rendergate/rendergate/internal/infrastructure/monitoring"
)

// pageSession is the rod-backed Session implementation.
type pageSession struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher // non-nil only in local-launch mode
	profile  Profile
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	once     sync.Once
}

func (s *pageSession) Navigate(url string) error {
	p := s.page.Timeout(s.profile.PageLoadTimeout)
	if err := p.Navigate(url); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return newError(CodeNavigation, err, "page did not begin loading within %s", s.profile.PageLoadTimeout)
		}
		return newError(CodeProtocol, err, "failed to navigate to %s", url)
	}
	if err := p.WaitLoad(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return newError(CodeNavigation, err, "page did not finish loading within %s", s.profile.PageLoadTimeout)
		}
		return newError(CodeProtocol, err, "failed to load %s", url)
	}
	return nil
}

func (s *pageSession) WaitReady() error {
	p := s.page.Timeout(s.profile.ReadyTimeout)
	if _, err := p.Element("body"); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return newError(CodeReadiness, err, "document body did not appear within %s", s.profile.ReadyTimeout)
		}
		return newError(CodeProtocol, err, "failed to wait for document body")
	}
	return nil
}

func (s *pageSession) ReadDocument() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", newError(CodeProtocol, err, "failed to read document")
	}
	return html, nil
}

// Close releases the page and the browser connection exactly once.
// Close runs in teardown paths where an error must not mask the
// handler's outcome, so failures are logged and swallowed.
func (s *pageSession) Close() {
	s.once.Do(func() {
		ok := s.teardown()
		if s.metrics != nil {
			s.metrics.SessionClosed(ok)
		}
	})
}

func (s *pageSession) teardown() bool {
	ok := true
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			s.logger.Warn("Error closing page", zap.Error(err))
			ok = false
		}
	}
	if err := s.browser.Close(); err != nil {
		s.logger.Warn("Error closing browser connection", zap.Error(err))
		ok = false
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	return ok
}
