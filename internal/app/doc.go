// Package app provides the orchestration layer for the Finder application.
//
// # Overview
//
// This package wires together configuration, logging, persistence, the
// stores, the catalog client and the UI. It is the composition root: no
// other package constructs long-lived dependencies.
//
// # Startup
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read ~/.config/finder/config.toml
//	       ├─────> logging.New()          JSON log file under data_dir
//	       ├─────> kv.OpenSQLite()        finder.db, migrations applied
//	       ├─────> session.NewStaticVerifier()
//	       ├─────> catalog.NewClient()
//	       ├─────> Hydrate()              errgroup: session, favorites,
//	       │                              theme and avatar in parallel
//	       ├─────> StartRetrier()         optional, auto_retry_seconds
//	       └─────> ui.Run()               TUI (blocks)
//
// Only configuration and database errors abort startup. Hydration problems
// are logged by each store, which then starts from its empty state.
//
// # Components
//
//   - app.go: Services, Open, Hydrate and Run
//   - retrier.go: background retry of a failed catalog fetch with
//     exponential backoff capped at 30s
//
// # Headless Use
//
// cmd/finder calls Open and Hydrate directly for the login, logout and
// favorites subcommands, which share the same database as the TUI.
package app
