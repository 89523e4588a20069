package app

import "errors"

var (
	// ErrMissingArgument is returned when a command is called without its
	// positional argument.
	ErrMissingArgument = errors.New("missing argument")
	// ErrOpeningCollection is returned when the collection of a command
	// cannot be opened.
	ErrOpeningCollection = errors.New("error opening collection")
)
