package grpcserver

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type flakyStore struct{ down atomic.Bool }

func (s *flakyStore) Ping(context.Context) error {
	if s.down.Load() {
		return errors.New("down")
	}
	return nil
}

func TestHealth_ReflectsStore(t *testing.T) {
	t.Parallel()
	log := zaptest.NewLogger(t)

	srv, hs := New(log, true)
	lis := bufconn.Listen(1 << 16)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	store := &flakyStore{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = WatchStore(ctx, hs, store, "@every 1s", log) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	waitFor := func(want healthpb.HealthCheckResponse_ServingStatus) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
			if err == nil && resp.GetStatus() == want {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
		t.Fatalf("status never became %v", want)
	}

	waitFor(healthpb.HealthCheckResponse_SERVING)
	store.down.Store(true)
	waitFor(healthpb.HealthCheckResponse_NOT_SERVING)
	store.down.Store(false)
	waitFor(healthpb.HealthCheckResponse_SERVING)
}

func TestWatchStore_BadSchedule(t *testing.T) {
	t.Parallel()

	_, hs := New(zaptest.NewLogger(t), false)
	err := WatchStore(context.Background(), hs, &flakyStore{}, "every now and then", zaptest.NewLogger(t))
	if err == nil {
		t.Fatalf("want schedule error")
	}
}
