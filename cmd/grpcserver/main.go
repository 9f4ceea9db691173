package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/milad/simplenem12/internal/config"
	"github.com/milad/simplenem12/internal/logging"
	"github.com/milad/simplenem12/internal/repo/nem12repo"
	nem12v1 "github.com/milad/simplenem12/internal/rpc/nem12v1"
	"github.com/milad/simplenem12/internal/service"
	grpcserver "github.com/milad/simplenem12/internal/transport/grpc"
)

func main() {
	var (
		cfgPath = flag.String("config", os.Getenv("NEM12_CONFIG"), "path to YAML config file")
		addr    = flag.String("addr", "", "listen address (overrides config)")
		file    = flag.String("file", "", "path to SimpleNEM12 file (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	if *addr != "" {
		cfg.GRPC.Addr = *addr
	}
	if *file != "" {
		cfg.Source.Path = *file
	}

	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		slog.Error("configure logging", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// The file is rejected as a whole; there is no partial load to fall back to.
	repo, err := nem12repo.NewFromFile(cfg.Source.Path)
	if err != nil {
		logger.Error("load meter reads", slog.String("path", cfg.Source.Path), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("meter reads loaded", slog.String("path", cfg.Source.Path), slog.Int("meter_reads", repo.Len()))

	svc := service.NewMeterReadService(repo, service.WithLogger(logger))
	api := grpcserver.New(svc)

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		logger.Error("listen", slog.String("addr", cfg.GRPC.Addr), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("gRPC listening", slog.String("addr", cfg.GRPC.Addr))

	g := grpc.NewServer(nem12v1.ServerOptions()...)
	nem12v1.RegisterMeterReadServiceServer(g, api)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(nem12v1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(g, hs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down gRPC")
		hs.Shutdown()
		ch := make(chan struct{})
		go func() {
			g.GracefulStop()
			close(ch)
		}()
		select {
		case <-ch:
		case <-time.After(cfg.GRPC.ShutdownTimeout):
			g.Stop()
		}
	}()

	if err := g.Serve(lis); err != nil {
		logger.Error("serve", slog.Any("error", err))
		os.Exit(1)
	}
}
