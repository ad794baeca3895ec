// Package server exposes the parallel search over HTTP.
//
// Endpoints:
//
//	POST /search   run one search over the values in the request body
//	GET  /health   liveness probe
//	GET  /metrics  Prometheus exposition
//
// Every request passes through SecurityMiddleware and the metrics middleware.
// /search is additionally guarded by a token-bucket rate limiter (429 when
// exhausted) and an admission semaphore bounding concurrent searches (503
// when saturated).
package server
