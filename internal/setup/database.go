package setup

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/healthkeeper/internal/logging"
	"github.com/dmitrijs2005/healthkeeper/internal/setup/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// OpenDatabase connects to Postgres through the pgx stdlib driver and
// checks the connection.
func OpenDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded migrations in version order. Each file runs
// in its own transaction; the first failure stops the run and later files
// are not attempted.
func Migrate(ctx context.Context, db *sql.DB, log logging.Logger) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{ctx: ctx, log: log})

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	log.Info(ctx, "starting database setup")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migration failed, stopping setup: %w", err)
	}
	log.Info(ctx, "database setup completed")
	return nil
}

// gooseLogger forwards goose progress lines to a logging.Logger.
type gooseLogger struct {
	ctx context.Context
	log logging.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Info(g.ctx, fmt.Sprintf(format, v...))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(g.ctx, fmt.Sprintf(format, v...))
}
