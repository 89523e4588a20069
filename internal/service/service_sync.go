package service

import (
	"context"
	"slices"
	"strings"

	"github.com/MKhiriev/key-collection/models"
)

// syncService is the concrete implementation of SyncService.
// It performs a purely in-memory set difference of two key maps; no storage
// layer or logger is required because the operation has no side effects.
type syncService struct{}

// NewSyncService constructs a SyncService ready for use.
func NewSyncService() SyncService {
	return &syncService{}
}

// BuildSyncPlan implements SyncService.
//
// Both maps must already be keyed by normalized keys. Two linear passes
// classify every key into at most one action:
//
//   - Pass 1 (over desired): keys missing from persisted are added.
//   - Pass 2 (over persisted): keys missing from desired are deleted.
//
// Keys present on both sides are left alone even when their names differ.
// The plan is sorted by key so that it can be logged and compared.
func (s *syncService) BuildSyncPlan(ctx context.Context, desired, persisted models.KeyMap) (models.SyncPlan, error) {
	var plan models.SyncPlan

	// ── Pass 1: desired but not persisted ───────────────────────────────────
	for key, rec := range desired {
		if err := ctx.Err(); err != nil {
			return models.SyncPlan{}, err
		}

		if _, ok := persisted[key]; ok {
			continue
		}
		plan.Add = append(plan.Add, models.KeyRecord{Key: key, Name: rec.Name})
	}

	// ── Pass 2: persisted but not desired ───────────────────────────────────
	for key := range persisted {
		if err := ctx.Err(); err != nil {
			return models.SyncPlan{}, err
		}

		if _, ok := desired[key]; ok {
			continue
		}
		plan.Delete = append(plan.Delete, key)
	}

	slices.SortFunc(plan.Add, func(a, b models.KeyRecord) int {
		return strings.Compare(a.Key, b.Key)
	})
	slices.Sort(plan.Delete)

	return plan, nil
}
