// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// SyncPlan lists the mutations required to bring a persisted collection to a
// desired membership.
//
// Add and Delete always touch disjoint keys. Keys present on both sides never
// appear in a plan, even if their names differ.
type SyncPlan struct {
	// Add holds records whose keys are desired but not persisted.
	Add []KeyRecord `json:"add"`

	// Delete holds keys that are persisted but no longer desired.
	Delete []string `json:"delete"`
}

// IsEmpty reports whether the plan carries no operations.
func (p SyncPlan) IsEmpty() bool {
	return len(p.Add) == 0 && len(p.Delete) == 0
}

// Len returns the total number of operations in the plan.
func (p SyncPlan) Len() int {
	return len(p.Add) + len(p.Delete)
}
