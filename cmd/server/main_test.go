package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/calendar/internal/config"
	"github.com/and161185/calendar/internal/repository/memory"
)

func TestReport_NeverBlocks(t *testing.T) {
	t.Parallel()

	ch := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		report(ch, errors.New("http"))
		report(ch, errors.New("grpc"))
		report(ch, errors.New("health"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("report blocked on a full channel")
	}
	require.EqualError(t, <-ch, "http")
}

func TestApplyFlags(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	applyFlags(cfg, ":9090", "", " SQLite ", "", true)
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, config.StoreSQLite, cfg.Store)
	require.True(t, cfg.Dev)
	require.Empty(t, cfg.GRPCAddr)
}

func TestOpenStore_Memory(t *testing.T) {
	t.Parallel()

	repo, closeStore, err := openStore(context.Background(), config.Default(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer closeStore()
	require.IsType(t, &memory.EventRepo{}, repo)
}
