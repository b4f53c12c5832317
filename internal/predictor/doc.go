// Package predictor serves crop predictions from the model bundles listed in a
// registry catalog. It is split into small files by concern:
//
//   - config.go: Config and New; defaults for the bundle cache and loader.
//   - service.go: Service type, catalog queries, Reload and Status.
//   - predict.go: request validation, value coercion and prediction.
//   - ensure.go: bundle loading with de-duplication and LRU eviction.
//   - errors.go: client error codes and helpers (IsPredictError, ErrorCode).
//   - events.go: lifecycle events and an in-memory publisher.
//   - metrics.go: Prometheus prediction counter.
//
// Loaded bundles are cached until the next Reload. A reload during a load
// never caches the stale bundle.
package predictor
