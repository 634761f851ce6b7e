package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/healthkeeper/internal/client/client"
	"github.com/dmitrijs2005/healthkeeper/internal/logging"
	"github.com/dmitrijs2005/healthkeeper/internal/setup"
	"github.com/dmitrijs2005/healthkeeper/internal/setup/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	log := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	if cfg.ServiceRoleKey == "" {
		log.Error(ctx, "service role key is required (-k or HEALTHKEEPER_SERVICE_ROLE_KEY)")
		os.Exit(1)
	}

	backend, err := client.New(client.Options{
		BaseURL: cfg.BackendURL,
		APIKey:  cfg.ServiceRoleKey,
		Logger:  log,
	})
	if err != nil {
		log.Error(ctx, "error creating backend client", "error", err)
		os.Exit(1)
	}

	if err := setup.RunSimpleSetup(ctx, backend, setup.SimpleBatches, log); err != nil {
		os.Exit(1)
	}
}
