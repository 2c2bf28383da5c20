// Package httpserver runs the HTTP listener with graceful shutdown.
//
// Server.Run blocks until the context is cancelled or the process receives
// SIGINT/SIGTERM, then drains in-flight requests within the shutdown timeout.
// Configuration comes from functional options or the env-tagged Config
// struct. HealthCheckHandler serves liveness and readiness probes for the
// process's dependencies.
package httpserver
