package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Resolution is one audit row: the outcome of a single resolve call,
// including the tier trace that produced it.
type Resolution struct {
	ID         int64
	Identifier string
	Kind       string
	Tier       string
	Score      *float64
	NoticeID   string
	Found      bool
	DurationMS int64
	Trace      []string
	CreatedAt  time.Time
}

// ResolutionRepository defines the contract for resolution audit access
type ResolutionRepository interface {
	Create(ctx context.Context, res *Resolution) error
	GetByID(ctx context.Context, id int64) (*Resolution, error)
	ListRecent(ctx context.Context, limit int) ([]Resolution, error)
}
