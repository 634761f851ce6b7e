// Package config loads runtime configuration for the healthkeeper terminal
// client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. HEALTHKEEPER_* environment variables, optionally loaded from a dotenv
//     file (-env path, or ./.env when present).
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
//	{
//	  "backend_url": "https://project.example.co",
//	  "anon_key": "public-anon-key",
//	  "redirect_url": "http://127.0.0.1:8081/callback",
//	  "oauth_provider": "google",
//	  "database_path": "healthkeeper.db",
//	  "request_timeout": "30s",
//	  "hydration_goal_ml": 2000
//	}
package config
