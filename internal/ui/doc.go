// Package ui provides the terminal user interface for the Furniture Finder
// application.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea program. Model owns every screen and keeps
// only presentation state (cursor, scroll offsets, text inputs). Domain state
// lives in the stores and view models it is handed through Options:
//
//   - session.Store decides the root screen: Login when logged out, Home otherwise
//   - state.Catalog backs the product list and its search
//   - state.Detail backs the product details screen
//   - favorites.Store, prefs.Store and profile.AvatarStore back the toggles
//
// # Screens
//
//   - Login: email and password form with inline validation alerts
//   - Home: product list for the configured category with live search
//   - Product Details: full record for one product, scrollable
//   - Profile: avatar, dark mode toggle and log out
//
// # Event Flow
//
//  1. Run() builds the Model and subscribes to session changes
//  2. Blocking work (login, fetches, persistence) runs inside tea.Cmd functions
//  3. Each command reports back with a message that Update folds into the Model
//  4. A periodic tick re-renders so background retries become visible
//
// # Key Bindings
//
//   - /: Search products (title or description, case-insensitive)
//   - f: Toggle favorite on the selected or open product
//   - F: Show favorites only
//   - enter: Open product details
//   - r: Retry a failed load
//   - p: Open profile
//   - c / t / L: Take photo, toggle dark mode, log out (profile)
//   - ?: Help
//   - q or Ctrl+C: Exit
package ui
