// Package config handles loading and parsing the Finder configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/finder/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - Config file: ~/.config/finder/config.toml
//   - Catalog API: https://dummyjson.com
//   - Category: furniture
//   - Data directory: ~/.local/share/finder
//   - Database: <data_dir>/finder.db
//   - Log file: <data_dir>/finder.log
//   - Request timeout: 10 seconds
//
// # TOML Format
//
//	api_base = "https://dummyjson.com"
//	category = "furniture"
//	data_dir = "~/.local/share/finder"
//	request_timeout_seconds = 10
//	log_level = "info"
//
//	[login]
//	email = "test@example.com"
//	password = "123456"
//
// Every field is optional. Tilde expansion is performed on data_dir.
//
// The [login] table configures the single credential pair accepted by the
// placeholder verifier in package session. It exists until a real
// authentication backend replaces it.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors (except
// os.ErrNotExist, which triggers defaults) and TOML parse errors.
package config
