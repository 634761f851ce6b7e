package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/flagx"
)

// parseFlags populates Config from command-line flags:
//
//	-u string   backend base URL
//	-k string   anon (public) API key
//	-r string   OAuth redirect URL served on loopback
//	-p string   default OAuth provider
//	-d string   local database path
//	-t int      request timeout (seconds)
//	-g int      daily hydration goal (ml)
//	-l string   log level (debug, info, warn, error)
//
// Only these flags are read from os.Args; -c/-config and -env belong to the
// other loaders.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-k", "-r", "-p", "-d", "-t", "-g", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BackendURL, "u", cfg.BackendURL, "backend base url")
	fs.StringVar(&cfg.AnonKey, "k", cfg.AnonKey, "anon api key")
	fs.StringVar(&cfg.RedirectURL, "r", cfg.RedirectURL, "oauth redirect url")
	fs.StringVar(&cfg.OAuthProvider, "p", cfg.OAuthProvider, "default oauth provider")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.IntVar(&cfg.HydrationGoalML, "g", cfg.HydrationGoalML, "daily hydration goal (ml)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
