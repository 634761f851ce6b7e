package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/healthkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays Config with HEALTHKEEPER_* variables after loading the
// dotenv file named by -env (or ./.env when present). Panics on unreadable
// files.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	for name, dst := range map[string]*string{
		"DATABASE_DSN":     &cfg.DatabaseDSN,
		"BACKEND_URL":      &cfg.BackendURL,
		"SERVICE_ROLE_KEY": &cfg.ServiceRoleKey,
		"LOG_LEVEL":        &cfg.LogLevel,
	} {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
}
