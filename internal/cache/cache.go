// Package cache holds per-user read caches for expensive query results.
package cache

import (
	"context"

	"github.com/nhle/todocal/internal/model"
)

// Cache stores calendar counts per user and date range.
type Cache interface {
	// GetCounts returns the cached counts and whether they were present.
	GetCounts(ctx context.Context, userID string, start, end model.Date) (map[model.Date]int, bool, error)
	SetCounts(ctx context.Context, userID string, start, end model.Date, counts map[model.Date]int) error

	// InvalidateUser drops every cached entry for userID.
	InvalidateUser(ctx context.Context, userID string) error
}

// Nop is a Cache that never holds anything.
type Nop struct{}

var _ Cache = Nop{}

func (Nop) GetCounts(context.Context, string, model.Date, model.Date) (map[model.Date]int, bool, error) {
	return nil, false, nil
}

func (Nop) SetCounts(context.Context, string, model.Date, model.Date, map[model.Date]int) error {
	return nil
}

func (Nop) InvalidateUser(context.Context, string) error { return nil }
