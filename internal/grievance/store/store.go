// Package store persists grievance records keyed by normalized contact
// identifier. Every backend provides atomic create-if-absent and atomic
// per-record update; none provides cross-record isolation.
package store

import (
	"sort"

	"civicdesk/internal/grievance/models"
	"civicdesk/pkg/platform/sentinel"
)

// Re-exported so callers only import this package.
var (
	ErrNotFound    = sentinel.ErrNotFound
	ErrAlreadyUsed = sentinel.ErrAlreadyUsed
)

// sortRecords orders a snapshot by creation time, then id, so every backend
// lists in the same order.
func sortRecords(records []*models.Grievance) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
