package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/healthkeeper/internal/flagx"
)

// parseFlags populates Config from command-line flags:
//
//	-d string   Postgres DSN
//	-u string   backend base URL
//	-k string   service-role API key
//	-l string   log level
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-u", "-k", "-l"})

	fs := flag.NewFlagSet("setup", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.BackendURL, "u", cfg.BackendURL, "backend base url")
	fs.StringVar(&cfg.ServiceRoleKey, "k", cfg.ServiceRoleKey, "service role key")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
