package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ogurasousui/hrlink/internal/app"
	"github.com/ogurasousui/hrlink/internal/platform/config"
	"github.com/ogurasousui/hrlink/internal/platform/logger"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		interval   = flag.Duration("interval", 0, "repeat every interval; zero runs once and exits")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(effectiveConfigPath(*configPath))
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

	rt, err := app.Open(ctx, cfg, log, nil)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer rt.Close()

	runOnce := func() {
		expired, purged, err := rt.Housekeep(ctx, cfg.Retention.RequestTTL)
		if err != nil {
			log.Error("housekeeping failed", zap.Int("expired", expired), zap.Int("purged", purged), zap.Error(err))
			return
		}
		log.Info("housekeeping completed", zap.Int("expired", expired), zap.Int("purged", purged))
	}

	runOnce()
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}
