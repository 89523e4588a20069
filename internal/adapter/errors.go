package adapter

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrPeerUnavailable     = errors.New("peer collection unavailable")
	ErrInternalServerError = errors.New("internal server error")

	ErrInvalidAddress = errors.New("invalid peer address")
	ErrPeerNotServing = errors.New("peer is not serving")
)
