package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/godilite/competency-dashboard/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:             "test",
		DBDriver:           "sqlite3",
		DBPath:             filepath.Join(t.TempDir(), "dashboard.db"),
		CacheEnabled:       false,
		CacheTTL:           time.Minute,
		CatalogTTL:         time.Minute,
		GRPCPort:           0,
		GRPCLoggingEnabled: true,
		HTTPAddr:           "127.0.0.1:0",
	}
}

func TestNewApp_RunAndShutdown(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := NewApp(ctx, testConfig(t), logger)
	require.NoError(t, err)
	assert.Nil(t, application.cache)
	assert.NotNil(t, application.grpcServer.Addr())
	assert.NotNil(t, application.httpServer.Addr())

	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewApp_InvalidDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBDriver = "oracle"

	_, err := NewApp(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database init failed")
}

func TestOpenRepository(t *testing.T) {
	db, repo, err := OpenRepository(context.Background(), testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer db.Close()

	regions, err := repo.GetRegionUnits(context.Background())
	require.NoError(t, err)
	assert.Empty(t, regions)
}
