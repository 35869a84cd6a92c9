// Command calendar-server serves the calendar event API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/and161185/calendar/internal/config"
	"github.com/and161185/calendar/internal/migrate"
	"github.com/and161185/calendar/internal/repository"
	"github.com/and161185/calendar/internal/repository/memory"
	"github.com/and161185/calendar/internal/repository/postgres"
	"github.com/and161185/calendar/internal/repository/sqlite"
	grpcserver "github.com/and161185/calendar/internal/server/grpc"
	"github.com/and161185/calendar/internal/server/httpapi"
	"github.com/and161185/calendar/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, opens the store and serves HTTP until a signal arrives.
func main() {
	// Flags override the config file.
	cfgPath := flag.String("config", "", "path to YAML config")
	addr := flag.String("addr", "", "HTTP listen address")
	grpcAddr := flag.String("grpc-addr", "", "gRPC health listen address (empty disables)")
	store := flag.String("store", "", "event store: postgres, sqlite or memory")
	dsn := flag.String("dsn", "", "PostgreSQL DSN")
	dev := flag.Bool("dev", false, "development logging and gRPC reflection")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	applyFlags(cfg, *addr, *grpcAddr, *store, *dsn, *dev)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger := newLogger(cfg.Dev)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer closeStore()

	events := service.NewEventService(repo)
	api := httpapi.New(events, repo, logger.Named("http"), httpapi.WithLocation(cfg.Location()))

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     zap.NewStdLog(logger.Named("http")),
	}

	// http serve, grpc serve and the health watcher may each report once
	errCh := make(chan error, 3)
	go func() {
		logger.Info("listening (http)", zap.String("addr", cfg.Addr), zap.Bool("tls", cfg.TLS()))
		var err error
		if cfg.TLS() {
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			report(errCh, err)
		}
	}()

	var gs *grpc.Server
	if cfg.GRPCAddr != "" {
		gs, err = startGRPC(ctx, cfg, repo, logger.Named("grpc"), errCh)
		if err != nil {
			logger.Fatal("grpc", zap.Error(err))
		}
	}

	// Wait for stop
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		closeStore()
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if gs != nil {
		done := make(chan struct{})
		go func() {
			gs.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			gs.Stop()
		}
	}

	logger.Info("shutdown complete")
}

func applyFlags(cfg *config.Config, addr, grpcAddr, store, dsn string, dev bool) {
	if addr != "" {
		cfg.Addr = addr
	}
	if grpcAddr != "" {
		cfg.GRPCAddr = grpcAddr
	}
	if store != "" {
		cfg.Store = store
	}
	if dsn != "" {
		cfg.DSN = dsn
	}
	if dev {
		cfg.Dev = true
	}
	cfg.Normalize()
}

func newLogger(dev bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// openStore returns the configured repository and its release function.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.EventRepository, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		ver, err := migrate.Up(ctx, cfg.DSN, log)
		if err != nil {
			return nil, nil, fmt.Errorf("migrate up: %w", err)
		}
		log.Info("schema ready", zap.Int64("version", ver))
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool: %w", err)
		}
		return postgres.NewEventRepo(db), db.Close, nil
	case config.StoreSQLite:
		db, err := sqlite.NewDB(cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewEventRepo(db), func() { _ = sqlite.Close(db) }, nil
	default:
		log.Warn("using in-memory store; events are lost on exit")
		return memory.NewEventRepo(), func() {}, nil
	}
}

func startGRPC(ctx context.Context, cfg *config.Config, repo repository.EventRepository, log *zap.Logger, errCh chan<- error) (*grpc.Server, error) {
	var opts []grpc.ServerOption
	if cfg.TLS() {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return nil, fmt.Errorf("load TLS cert/key: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}
	gs, hs := grpcserver.New(log, cfg.Dev, opts...)
	go func() {
		if err := grpcserver.WatchStore(ctx, hs, repo, cfg.HealthSchedule, log); err != nil {
			report(errCh, err)
		}
	}()

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return nil, err
	}
	go func() {
		log.Info("listening (grpc)", zap.String("addr", cfg.GRPCAddr))
		if err := gs.Serve(lis); err != nil {
			report(errCh, err)
		}
	}()
	return gs, nil
}

// report hands err to main; only the first failure matters, so a full
// channel drops it instead of blocking the sender.
func report(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}
