// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app implements the runtime of the key-collection commands.
//
// It wires storage, services, the peer API, the swarm and the background
// replication worker into a single process lifecycle, and tears them down in
// a fixed order when the command ends.
package app
