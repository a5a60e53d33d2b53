// Package http implements the HTTP handlers of the capture export service.
// Handlers stay thin: they decode requests, choose the HTTP response as the
// delivery target and leave validation and rendering to the services.
//
// Routes:
//
//	POST /api/captures/export        records in, CSV or XLSX attachment out
//	GET  /api/health                 basic health
//	GET  /api/health/live            liveness with runtime stats
//	GET  /api/health/ready           readiness of registered checks
//	GET  /api/version                build information
//
// Errors are written as RFC 7807 problem documents through errors.ErrorHandler.
package http
