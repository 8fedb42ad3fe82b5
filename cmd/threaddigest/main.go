package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adda-Baaj/thread-digest/internal/app"
	"github.com/Adda-Baaj/thread-digest/internal/config"
	"github.com/Adda-Baaj/thread-digest/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "thread-digest failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("thread-digest starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	digest, err := app.NewDigest(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize digest", "error", err)
		return err
	}

	if err := digest.Run(ctx); err != nil {
		return fmt.Errorf("digest run: %w", err)
	}

	return nil
}
