// Package state provides the thread-safe view models behind the catalog and
// detail screens.
//
// # Overview
//
// Each view model owns one fetch state machine and hands the UI immutable
// snapshots. Bubble Tea runs Update on one goroutine and commands on others,
// so fetches run in commands while rendering reads snapshots:
//
//	UI (Update):                  Command goroutine:
//	┌──────────────────┐          ┌────────────────────┐
//	│ t := m.Begin()   │─────────→│ m.Run(ctx, t)      │
//	│                  │          │   FetchCategory()  │
//	│ m.Snapshot()     │←─(mutex)─│   commit if t is   │
//	│ render           │          │   still current    │
//	└──────────────────┘          └────────────────────┘
//
// # States
//
// A single Status enum replaces separate loading and error flags:
//
//	loading ──fetch ok──→ ready
//	   │                    │
//	fetch failed          Begin / Retry
//	   ↓                    │
//	 error ──Retry──→ loading
//
// In the error state Snapshot().Message carries the user-facing text
// (CatalogErrorMessage or DetailErrorMessage) and LastError the cause.
//
// # Tickets
//
// Begin increments a ticket and cancels whatever attempt was in flight.
// Run commits only when its ticket is still the newest and the model has
// not been closed; otherwise it returns ErrDiscarded and changes nothing.
// Close cancels the in-flight request so a screen that has gone away never
// receives a late result.
//
// # Search
//
// Catalog.SetQuery stores the query. Catalog.Filtered applies Filter, a
// case-insensitive substring match on title or description, and memoizes
// the result until the listing or the query changes. An empty query yields
// the full listing.
//
// # Detail
//
// Detail.SetID starts an attempt when the id changes, or when the previous
// attempt for the same id failed. Detail.DisplayImage falls back to the
// thumbnail when the item has no gallery images.
//
// # Defensive Copying
//
// Snapshots clone item slices, so the UI may hold them across renders
// without racing the next commit.
package state
