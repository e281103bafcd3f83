package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cms-search/bootstrap"
	"cms-search/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Run(ctx); err != nil {
		logger.Logger.Error("cms-search exited with error", "err", err)
		os.Exit(1)
	}
}
