// Package config loads runtime configuration for the mobank CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. MOBANK_* environment variables, after loading a .env file named by
//     -e/-env (or ./.env when present) with github.com/joho/godotenv.
//     Variables already in the environment win over the file.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   REST API base URL
//	-w string   websocket base URL
//	-s string   store backend: sqlite, redis or memory
//	-d string   SQLite database path
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "15s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "https://bank.example.com",
//	  "ws_base_url": "wss://bank.example.com",
//	  "store_backend": "sqlite",
//	  "store_path": "mobank.db",
//	  "request_timeout": "15s",
//	  "reconnect_delay": "2s",
//	  "seed_recipients": true,
//	  "log_level": "info"
//	}
//
// Malformed files, variables or flag values panic at startup.
package config
