package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/locvowork/taskflow/internal/bootstrap"
	"github.com/locvowork/taskflow/internal/cli"
	"github.com/locvowork/taskflow/internal/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("Failed to initialize application: %v", err))
		os.Exit(1)
	}

	if err := cli.Execute(ctx, app, version); err != nil {
		os.Exit(1)
	}
}
