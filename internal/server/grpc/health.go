// Package grpcserver runs the gRPC health listener of the calendar service.
package grpcserver

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported for the event store.
const ServiceName = "calendar.v1.Events"

const pingTimeout = 5 * time.Second

// Pinger reports store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New builds a gRPC server with recovery and logging interceptors and a
// registered health service. Reflection is enabled in dev mode.
func New(log *zap.Logger, dev bool, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		RecoverUnary(log),
		LoggingUnary(log),
	))
	s := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if dev {
		reflection.Register(s)
	}
	return s, hs
}

// WatchStore pings the store on the cron schedule (e.g. "@every 15s") and
// mirrors the result into hs for both the overall and the events service.
// It returns when ctx is done, leaving everything NOT_SERVING.
func WatchStore(ctx context.Context, hs *health.Server, store Pinger, schedule string, log *zap.Logger) error {
	set := func(st healthpb.HealthCheckResponse_ServingStatus) {
		hs.SetServingStatus("", st)
		hs.SetServingStatus(ServiceName, st)
	}
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := store.Ping(pctx); err != nil {
			log.Warn("store ping failed", zap.Error(err))
			set(healthpb.HealthCheckResponse_NOT_SERVING)
			return
		}
		set(healthpb.HealthCheckResponse_SERVING)
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, check); err != nil {
		return fmt.Errorf("health schedule %q: %w", schedule, err)
	}
	check()
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	hs.Shutdown()
	return nil
}
