package server

import "context"

// Server defines the lifecycle contract of the peer API servers managed by
// this package.
type Server interface {
	// Start binds the listeners of every enabled transport and serves
	// requests in the background. Bind errors are returned synchronously.
	Start() error

	// Shutdown gracefully stops the servers. Calls after the first are
	// no-ops.
	Shutdown()
}

// transport is a single listener managed by [Server].
type transport interface {
	name() string
	listen() error
	serve()
	shutdown(ctx context.Context)
}
