package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/healthkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/healthkeeper/internal/client/cli"
	"github.com/dmitrijs2005/healthkeeper/internal/client/config"
	"github.com/dmitrijs2005/healthkeeper/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	log := logging.NewTextLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "error starting client", "error", err)
		return
	}

	app.Run(ctx)
}
