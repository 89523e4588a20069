// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package app

import "context"

// Command is a runnable key-collection subcommand.
type Command interface {
	// Run executes the command with its positional arguments and blocks
	// until it completes or ctx is done.
	Run(ctx context.Context, args []string) error
}
