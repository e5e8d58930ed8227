package natsclient

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionStatusString(t *testing.T) {
	tests := []struct {
		status   ConnectionStatus
		expected string
	}{
		{StatusDisconnected, "disconnected"},
		{StatusConnecting, "connecting"},
		{StatusConnected, "connected"},
		{StatusReconnecting, "reconnecting"},
		{ConnectionStatus(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.status.String())
	}
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	assert.Equal(t, "nats://localhost:4222", c.URL())
	assert.Equal(t, StatusDisconnected, c.Status())
	assert.False(t, c.IsHealthy())
	assert.Equal(t, -1, c.maxReconnects)
	assert.Equal(t, 5*time.Second, c.timeout)
}

func TestNewClientOptions(t *testing.T) {
	c, err := NewClient("nats://localhost:4222",
		WithMaxReconnects(3),
		WithReconnectWait(time.Second),
		WithTimeout(2*time.Second),
		WithDrainTimeout(10*time.Second),
		WithName("store-driver"),
		WithCredentials("user", "pass"),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, c.maxReconnects)
	assert.Equal(t, time.Second, c.reconnectWait)
	assert.Equal(t, 2*time.Second, c.timeout)
	assert.Equal(t, 10*time.Second, c.drainTimeout)
	assert.Equal(t, "store-driver", c.clientName)
	assert.Equal(t, "user", c.username)
}

func TestOptionFailurePropagates(t *testing.T) {
	boom := errors.New("bad option")
	_, err := NewClient("nats://localhost:4222", func(*Client) error { return boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestJetStreamNotConnected(t *testing.T) {
	c, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	_, err = c.JetStream()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestRTTNotConnected(t *testing.T) {
	c, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	_, err = c.RTT()
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestIsAlreadyExistsError(t *testing.T) {
	assert.False(t, isAlreadyExistsError(nil))
	assert.True(t, isAlreadyExistsError(errors.New("bucket name already in use")))
	assert.True(t, isAlreadyExistsError(errors.New("stream name already in use")))
	assert.False(t, isAlreadyExistsError(errors.New("connection refused")))
}
