package config

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freaky/IMSErious/pkg/message"
)

const minimal = `
handlers:
  - event: MessageNew
    user: freaky
    command: fdm fetch
`

// TestParseMinimal tests defaults on a minimal config
func TestParseMinimal(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, DefaultMaxConnections, cfg.MaxConnections)
	assert.Zero(t, cfg.Timeout)
	assert.Nil(t, cfg.Auth)
	assert.Nil(t, cfg.TLS)
	require.Len(t, cfg.Handlers, 1)

	h := cfg.Handlers[0]
	require.NotNil(t, h.Event)
	assert.Equal(t, message.MessageNew, *h.Event)
	assert.Equal(t, "freaky", h.User)
	assert.Equal(t, []string{"fdm", "fetch"}, h.Command.Argv())
}

// TestParseFull tests a fully-specified config
func TestParseFull(t *testing.T) {
	cfg, err := Parse([]byte(`
listen: "10.0.0.1:12525"
endpoint: /ox_notify
allow:
  - 10.0.0.0/8
  - 192.168.1.1
max_connections: 32
timeout: 5s
auth:
  user: imse
  pass: secret
tls:
  cert: /etc/imse/cert.pem
  key: /etc/imse/key.pem
metrics_listen: "127.0.0.1:9090"
handlers:
  - event: messagenew
    user: freaky
    delay: 30s
    limit_period: 10m
    limit_burst: 3
    periodic: 1h
    command: sudo -n -H -u freaky fdm -a eda -l fetch
  - event: MessageTrash
    user: veron
    command: notify-send "mail trashed"
`))
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1:12525", cfg.Listen)
	assert.Equal(t, "/ox_notify", cfg.Endpoint)
	require.Len(t, cfg.Allow, 2)
	assert.Equal(t, 32, cfg.MaxConnections)
	assert.Equal(t, 5*time.Second, cfg.Timeout.Std())
	require.NotNil(t, cfg.Auth)
	assert.Equal(t, "imse", cfg.Auth.User)
	require.NotNil(t, cfg.TLS)
	assert.Equal(t, "127.0.0.1:9090", cfg.MetricsListen)

	require.Len(t, cfg.Handlers, 2)
	h := cfg.Handlers[0]
	require.NotNil(t, h.Event)
	assert.Equal(t, message.MessageNew, *h.Event)
	assert.Equal(t, 30*time.Second, h.Delay.Std())
	assert.Equal(t, 10*time.Minute, h.LimitPeriod.Std())
	assert.Equal(t, 3, h.LimitBurst)
	assert.Equal(t, time.Hour, h.Periodic.Std())
	assert.Equal(t, "sudo", h.Command.Program())
}

// TestParseErrors tests rejected configurations
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "no handlers",
			body: `listen: "127.0.0.1:12525"`,
		},
		{
			name: "unknown key",
			body: minimal + "\nlisten_addr: whoops\n",
		},
		{
			name: "zero duration",
			body: `
handlers:
  - event: MessageNew
    user: freaky
    delay: 0s
    command: fdm fetch
`,
		},
		{
			name: "negative duration",
			body: `
handlers:
  - event: MessageNew
    user: freaky
    periodic: -5s
    command: fdm fetch
`,
		},
		{
			name: "unknown event kind",
			body: `
handlers:
  - event: MessageBounce
    user: freaky
    command: fdm fetch
`,
		},
		{
			name: "missing event",
			body: `
handlers:
  - user: freaky
    command: fdm fetch
`,
		},
		{
			name: "empty user",
			body: `
handlers:
  - event: MessageNew
    user: ""
    command: fdm fetch
`,
		},
		{
			name: "missing command",
			body: `
handlers:
  - event: MessageNew
    user: freaky
`,
		},
		{
			name: "unterminated quote in command",
			body: `
handlers:
  - event: MessageNew
    user: freaky
    command: sh -c 'oops
`,
		},
		{
			name: "auth without pass",
			body: `
auth:
  user: imse
` + minimal,
		},
		{
			name: "tls without key",
			body: `
tls:
  cert: /etc/cert.pem
` + minimal,
		},
		{
			name: "endpoint without slash",
			body: "endpoint: notify\n" + minimal,
		},
		{
			name: "bad allow entry",
			body: "allow: [not-an-ip]\n" + minimal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

// TestAllowed tests allow-list matching
func TestAllowed(t *testing.T) {
	cfg, err := Parse([]byte("allow: [\"10.0.0.0/8\", \"192.168.1.1\"]\n" + minimal))
	require.NoError(t, err)

	assert.True(t, cfg.Allowed(netip.MustParseAddr("10.1.2.3")))
	assert.True(t, cfg.Allowed(netip.MustParseAddr("192.168.1.1")))
	assert.False(t, cfg.Allowed(netip.MustParseAddr("192.168.1.2")))
	assert.False(t, cfg.Allowed(netip.MustParseAddr("8.8.8.8")))

	// IPv4-mapped addresses match their v4 networks
	assert.True(t, cfg.Allowed(netip.MustParseAddr("::ffff:10.1.2.3")))
}

// TestAllowedEmptyList allows everything
func TestAllowedEmptyList(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)
	assert.True(t, cfg.Allowed(netip.MustParseAddr("8.8.8.8")))
}

// TestSpecs tests conversion to scheduler specs
func TestSpecs(t *testing.T) {
	cfg, err := Parse([]byte(`
handlers:
  - event: MessageNew
    user: freaky
    delay: 2s
    command: fdm fetch
  - event: MessageNew
    user: freaky
    command: notify-send mail
`))
	require.NoError(t, err)

	specs := cfg.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, 2*time.Second, specs[0].Delay)
	assert.Equal(t, "fdm", specs[0].Command.Program())
	// shared routing keys stay distinct entries
	assert.Equal(t, "notify-send", specs[1].Command.Program())
}

// TestLoad tests reading from a file
func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imserious.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Handlers, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
