package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays Config with HEALTHKEEPER_* variables. A dotenv file
// given with -env is loaded first; without the flag ".env" is loaded when
// present. Variables already set in the process are never overwritten.
// Panics on unreadable files or malformed numbers.
func parseEnv(cfg *Config) {
	loadDotenv(flagx.EnvFileFlag())

	if v, ok := lookup("BACKEND_URL"); ok {
		cfg.BackendURL = v
	}
	if v, ok := lookup("ANON_KEY"); ok {
		cfg.AnonKey = v
	}
	if v, ok := lookup("REDIRECT_URL"); ok {
		cfg.RedirectURL = v
	}
	if v, ok := lookup("OAUTH_PROVIDER"); ok {
		cfg.OAuthProvider = v
	}
	if v, ok := lookup("DATABASE_PATH"); ok {
		cfg.DatabasePath = v
	}
	if v, ok := lookup("STORAGE_SECRET"); ok {
		cfg.StorageSecret = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup("REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := lookup("HYDRATION_GOAL_ML"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		cfg.HydrationGoalML = n
	}
}

func loadDotenv(path string) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
