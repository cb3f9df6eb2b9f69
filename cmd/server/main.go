package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/ogurasousui/hrlink/internal/adapters/grpc/interceptor"
	"github.com/ogurasousui/hrlink/internal/app"
	"github.com/ogurasousui/hrlink/internal/platform/config"
	"github.com/ogurasousui/hrlink/internal/platform/logger"
	"github.com/ogurasousui/hrlink/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rt, err := app.Open(ctx, cfg, log, reg)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer rt.Close()

	auth := interceptor.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, server.HealthCheckMethod)
	grpcServer := server.New(cfg.Server.ListenAddr, cfg.Server.MetricsAddr, rt.Handler, reg, log,
		grpc.ChainUnaryInterceptor(auth.Unary(), interceptor.Logging(log.Named("grpc"))),
	)

	if err := grpcServer.Run(ctx); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
	log.Info("server stopped")
}
