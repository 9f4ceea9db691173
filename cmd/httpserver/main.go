package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/milad/simplenem12/internal/config"
	"github.com/milad/simplenem12/internal/logging"
	nem12v1 "github.com/milad/simplenem12/internal/rpc/nem12v1"
	httpserver "github.com/milad/simplenem12/internal/transport/http"
)

func main() {
	var (
		cfgPath  = flag.String("config", os.Getenv("NEM12_CONFIG"), "path to YAML config file")
		addr     = flag.String("addr", "", "listen address (overrides config)")
		grpcAddr = flag.String("grpc", "", "gRPC target host:port (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if *grpcAddr != "" {
		cfg.HTTP.GRPCTarget = *grpcAddr
	}

	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		slog.Error("configure logging", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg.HTTP, logger); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.HTTPConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, nem12v1.DialOptions()...)
	conn, err := grpc.NewClient(cfg.GRPCTarget, dialOpts...)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Reduce docker-compose race: wait a bit for gRPC to be ready.
	waitForGRPC(ctx, conn, cfg.GRPCWaitTimeout, logger)

	srv := httpserver.New(nem12v1.NewMeterReadServiceClient(conn),
		httpserver.WithLogger(logger),
		httpserver.WithUpstreamTimeout(cfg.UpstreamTimeout),
	)

	h := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	logger.Info("HTTP listening", slog.String("addr", cfg.Addr), slog.String("grpc_target", cfg.GRPCTarget))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := h.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return h.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func waitForGRPC(ctx context.Context, conn *grpc.ClientConn, maxWait time.Duration, logger *slog.Logger) {
	if maxWait <= 0 {
		return
	}

	hc := healthpb.NewHealthClient(conn)
	deadline := time.Now().Add(maxWait)

	backoff := 100 * time.Millisecond
	for {
		if ctx.Err() != nil {
			return
		}

		reqCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
		_, err := hc.Check(reqCtx, &healthpb.HealthCheckRequest{Service: nem12v1.ServiceName})
		cancel()
		if err == nil {
			logger.Info("gRPC is ready")
			return
		}

		if time.Now().After(deadline) {
			logger.Warn("gRPC not ready; continuing anyway", slog.Duration("waited", maxWait), slog.Any("error", err))
			return
		}

		time.Sleep(backoff)
		if backoff < 1*time.Second {
			backoff *= 2
			if backoff > 1*time.Second {
				backoff = 1 * time.Second
			}
		}
	}
}
