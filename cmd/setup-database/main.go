package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/healthkeeper/internal/logging"
	"github.com/dmitrijs2005/healthkeeper/internal/setup"
	"github.com/dmitrijs2005/healthkeeper/internal/setup/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	log := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	db, err := setup.OpenDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error opening database", "error", err)
		os.Exit(1)
	}

	err = setup.Migrate(ctx, db, log)
	db.Close()
	if err != nil {
		log.Error(ctx, "database setup failed", "error", err)
		os.Exit(1)
	}
}
