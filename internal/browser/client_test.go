package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendergate/rendergate/internal/infrastructure/logging"
)

func TestNewClient(t *testing.T) {
	c := NewClient("http://hub:4444/wd/hub", false, DefaultProfile(), logging.NewNop())
	assert.Equal(t, "http://hub:4444/wd/hub", c.Endpoint())
}

func TestOpenUnreachableEndpoint(t *testing.T) {
	// Closed port: session open must fail with a connection error that
	// names the configured endpoint.
	c := NewClient("http://127.0.0.1:1/wd/hub", false, DefaultProfile(), logging.NewNop())

	_, err := c.Open(context.Background())
	require.Error(t, err)
	assert.True(t, IsConnection(err))
	assert.Contains(t, err.Error(), "http://127.0.0.1:1/wd/hub")
}
