package handler

import "errors"

// errNoHandlersAreCreated means the server config enables no transport.
var errNoHandlersAreCreated = errors.New("no peer api or health transport configured")
