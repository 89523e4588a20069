// Package http implements the peer-facing HTTP API of a node.
//
// It exposes route wiring, request handlers, and middleware. Other peers use
// the API to read this node's announcement and to download signed snapshots
// of the collections it serves. Cross-cutting concerns such as request
// tracing, access logging and response compression are handled in this
// package before requests are delegated to the service layer.
package http
