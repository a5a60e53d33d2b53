// Package app assembles the capture export server: configuration, logging,
// OpenTelemetry, the exporter and its services, the chi router and the HTTP
// server lifecycle.
//
// Middleware order on every route except /metrics:
//
//	RequestID → RealIP → OTel → StructuredLogger → Recoverer → SecurityHeaders → RateLimiter → Timeout
//
// Run serves until the context is cancelled or SIGINT/SIGTERM arrives, then
// drains in-flight requests within Server.ShutdownTimeout and flushes
// telemetry.
package app
