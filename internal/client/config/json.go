package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/healthkeeper/internal/flagx"
	"github.com/dmitrijs2005/healthkeeper/internal/timex"
)

// JsonConfig is the on-disk form. Intervals use timex.Duration so they may
// be written as "30s" or as integer nanoseconds. Absent fields keep the
// values from earlier sources.
type JsonConfig struct {
	BackendURL      *string         `json:"backend_url"`
	AnonKey         *string         `json:"anon_key"`
	RedirectURL     *string         `json:"redirect_url"`
	OAuthProvider   *string         `json:"oauth_provider"`
	DatabasePath    *string         `json:"database_path"`
	StorageSecret   *string         `json:"storage_secret"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	HydrationGoalML *int            `json:"hydration_goal_ml"`
	LogLevel        *string         `json:"log_level"`
}

// parseJson overlays Config with the JSON file named by -c or -config.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.BackendURL, jc.BackendURL)
	setString(&cfg.AnonKey, jc.AnonKey)
	setString(&cfg.RedirectURL, jc.RedirectURL)
	setString(&cfg.OAuthProvider, jc.OAuthProvider)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.StorageSecret, jc.StorageSecret)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.HydrationGoalML != nil {
		cfg.HydrationGoalML = *jc.HydrationGoalML
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
