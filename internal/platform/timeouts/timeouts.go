// Package timeouts defines shared timeout constants for service processes.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// StorePing caps the startup connectivity check against the identity store.
const StorePing = 2 * time.Second
