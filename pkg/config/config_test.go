package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
	"github.com/stretchr/testify/require"
)

const testConfig = `
ApplicationConfiguration:
  LogLevel: debug
  Notifier:
    EnabledEvents:
      - block_added
      - utxos_changed
    Broadcasters: 4
    MaxScopesPerListener: 8
  Prometheus:
    Enabled: true
    Addresses:
      - ":2112"
      - ":2112"
  RPC:
    Enabled: true
    Addresses:
      - "localhost:0"
    MaxWebSocketClients: 16
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dagnode.yml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	app := cfg.ApplicationConfiguration
	require.Equal(t, "debug", app.LogLevel)
	require.Equal(t, 4, app.Notifier.Broadcasters)
	require.Equal(t, DefaultQueueSize, app.Notifier.QueueSize)
	require.Equal(t, DefaultListenerBufferSize, app.Notifier.ListenerBufferSize)
	require.Equal(t, 8, app.Notifier.MaxScopesPerListener)
	require.Equal(t, []string{":2112"}, app.Prometheus.GetAddresses())
	require.True(t, app.RPC.Enabled)
	require.Equal(t, 16, app.RPC.MaxWebSocketClients)

	set, err := app.Notifier.EventSet()
	require.NoError(t, err)
	require.Equal(t, events.NewSet(events.BlockAdded, events.UtxosChanged), set)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
}

func TestRPCConfigSubscriptionBuffer(t *testing.T) {
	cfg, err := LoadBytes([]byte("ApplicationConfiguration:\n  Notifier:\n    ListenerBufferSize: 2\n"))
	require.NoError(t, err)
	app := cfg.ApplicationConfiguration
	require.Equal(t, 0, app.RPC.SubscriptionBufferSize)
	require.Equal(t, 2, app.RPCConfig().SubscriptionBufferSize)
	require.Equal(t, 0, app.RPC.SubscriptionBufferSize)

	app.RPC.SubscriptionBufferSize = 16
	require.Equal(t, 16, app.RPCConfig().SubscriptionBufferSize)
}

func TestLoadBytesDefaults(t *testing.T) {
	cfg, err := LoadBytes(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultBroadcasters, cfg.ApplicationConfiguration.Notifier.Broadcasters)
	require.Equal(t, DefaultMaxWebSocketClients, cfg.ApplicationConfiguration.RPC.MaxWebSocketClients)

	set, err := cfg.ApplicationConfiguration.Notifier.EventSet()
	require.NoError(t, err)
	require.Equal(t, events.FullSet(), set)
}

func TestLoadBytesInvalid(t *testing.T) {
	for name, data := range map[string]string{
		"unknown field":     "ApplicationConfiguration:\n  Unknown: 1\n",
		"unknown event":     "ApplicationConfiguration:\n  Notifier:\n    EnabledEvents: [bad_event]\n",
		"missed event":      "ApplicationConfiguration:\n  Notifier:\n    EnabledEvents: [event_missed]\n",
		"negative workers":  "ApplicationConfiguration:\n  Notifier:\n    Broadcasters: -1\n",
		"negative queue":    "ApplicationConfiguration:\n  Notifier:\n    QueueSize: -1\n",
		"negative ws":       "ApplicationConfiguration:\n  RPC:\n    MaxWebSocketClients: -1\n",
		"negative body":     "ApplicationConfiguration:\n  RPC:\n    MaxRequestBodyBytes: -1\n",
		"negative buffer":   "ApplicationConfiguration:\n  RPC:\n    SubscriptionBufferSize: -1\n",
		"negative scopes":   "ApplicationConfiguration:\n  Notifier:\n    MaxScopesPerListener: -1\n",
		"negative listener": "ApplicationConfiguration:\n  Notifier:\n    ListenerBufferSize: -1\n",
		"broken yaml":       "ApplicationConfiguration: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadBytes([]byte(data))
			require.Error(t, err)
		})
	}
}

func TestEquals(t *testing.T) {
	a := BasicService{Enabled: true, Addresses: []string{":1", ":2"}}
	require.True(t, a.Equals(BasicService{Enabled: true, Addresses: []string{":1", ":2"}}))
	require.False(t, a.Equals(BasicService{Enabled: false, Addresses: []string{":1", ":2"}}))
	require.False(t, a.Equals(BasicService{Enabled: true, Addresses: []string{":2", ":1"}}))

	r := RPC{BasicService: a, MaxWebSocketClients: 10}
	require.True(t, r.Equals(r))
	r2 := r
	r2.SubscriptionBufferSize = 5
	require.False(t, r.Equals(r2))

	n := Notifier{EnabledEvents: []string{"block_added"}, Broadcasters: 2}
	require.True(t, n.Equals(Notifier{EnabledEvents: []string{"block_added"}, Broadcasters: 2}))
	require.False(t, n.Equals(Notifier{Broadcasters: 2}))
}
