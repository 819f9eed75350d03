package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/sentidash/config"
	"github.com/spacesedan/sentidash/internal/logging"
)

func main() {
	config.LoadEnv(config.AppEnv())
	cfg := config.Load()
	logging.InitLogger(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
