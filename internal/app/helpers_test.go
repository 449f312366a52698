package app

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/sapo-cl/mercadopublico-monitor/internal/config"
)

// memoryConfig returns a valid configuration backed by the in-memory store
func memoryConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Storage: config.StorageConfig{Type: config.StorageTypeMemory},
		Sync:    config.SyncConfig{Timezone: "America/Santiago"},
	}
	require.NoError(t, cfg.SetTicket("test-ticket"))
	return cfg
}

// freeAddress returns a loopback address nothing is listening on
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// fakeClock keeps the schedules from firing during a test
func fakeClock() *clocktesting.FakeClock {
	return clocktesting.NewFakeClock(time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC))
}
