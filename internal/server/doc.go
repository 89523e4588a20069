// Package server runs the peer API of a node.
//
// It binds the HTTP snapshot API and the gRPC health service, serves them in
// the background and shuts them down gracefully. Stop signals are handled by
// the caller.
package server
