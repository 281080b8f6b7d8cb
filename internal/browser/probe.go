package browser

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// VersionInfo describes the remote backend build, as reported by the
// devtools /json/version endpoint.
type VersionInfo struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	UserAgent            string `json:"User-Agent"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// ProbeVersion queries the backend's version endpoint. The probe is
// observational only; callers must treat failures as non-fatal and must
// not gate readiness on it.
func ProbeVersion(ctx context.Context, endpoint string) (*VersionInfo, error) {
	origin, err := endpointOrigin(endpoint)
	if err != nil {
		return nil, err
	}

	var info VersionInfo
	client := resty.New().SetTimeout(3 * time.Second)
	resp, err := client.R().
		SetContext(ctx).
		SetResult(&info).
		Get(origin + "/json/version")
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", origin, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("probe %s: status %d", origin, resp.StatusCode())
	}
	return &info, nil
}

// endpointOrigin strips any path from the configured endpoint, since the
// version endpoint always lives at the host root.
func endpointOrigin(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint %s: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint %s has no host", endpoint)
	}
	scheme := u.Scheme
	switch scheme {
	case "ws":
		scheme = "http"
	case "wss":
		scheme = "https"
	case "":
		scheme = "http"
	}
	return scheme + "://" + u.Host, nil
}
