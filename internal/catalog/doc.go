// Package catalog provides an HTTP client for the remote product catalog.
//
// # Overview
//
// The catalog is an opaque JSON service (dummyjson.com by default). Finder
// reads two endpoints:
//
//   - GET /products/category/{name}: listing of items in a category
//   - GET /products/{id}: full detail of one item
//
// # Client Usage
//
//	client, err := catalog.NewClient(cfg.APIBase, cfg.RequestTimeout, logger)
//	if err != nil {
//		return fmt.Errorf("init catalog client: %w", err)
//	}
//
//	items, err := client.FetchCategory(ctx, "furniture")
//	detail, err := client.FetchItem(ctx, 5)
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: finder/0.1
//   - Carry a fresh X-Request-ID, logged alongside status and duration
//   - Are bounded by the http.Client timeout from configuration
//
// # Error Handling
//
// Any non-2xx status yields a *StatusError. Network failures are wrapped as
// "execute request", malformed bodies as "decode response". Payloads that
// decode but violate the catalog invariants (negative price or stock, rating
// outside 0..5, duplicate ids in a listing) wrap ErrInvalidItem. Callers treat
// all of these uniformly as a fetch failure.
//
// # Prices
//
// Prices are decoded into decimal.Decimal so that formatting never shows
// binary floating point artifacts.
package catalog
