package services

import (
	"context"
	"time"

	"github.com/jakechorley/neighbourly/internal/config"
	"github.com/jakechorley/neighbourly/pkg/db"
)

// Notifier sends the introduction email of one group
type Notifier interface {
	SendGroupIntroduction(members []db.Contact) (int, error)
}

// ExternalProfileSource reads imported profile batches
type ExternalProfileSource interface {
	ListExternalProfiles(cfg *config.Config, batchID string, importedAt time.Time) ([]db.ExternalProfile, error)
}

// MatchStore defines the database operations needed to load a matching pool
type MatchStore interface {
	db.PolicyStore
	db.ProfileStore
}

// MatchCommunityStore defines the database operations needed to run and persist a match
type MatchCommunityStore interface {
	MatchStore
	InsertMatchRun(ctx context.Context, run *db.MatchRun, groups []db.MatchGroup) error
	MarkRunIntroduced(ctx context.Context, runID string, at time.Time) error
}

// ApproveRunStore defines the database operations needed to approve a held run
type ApproveRunStore interface {
	db.ProfileStore
	GetMatchRun(ctx context.Context, runID string) (*db.MatchRun, []db.MatchGroup, error)
	ApproveMatchRun(ctx context.Context, runID string, at time.Time) error
	MarkRunIntroduced(ctx context.Context, runID string, at time.Time) error
}
