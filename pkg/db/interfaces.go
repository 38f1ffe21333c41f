package db

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// ErrRunNotPending is returned when approving a run that is no longer awaiting review
var ErrRunNotPending = errors.New("match run is not pending review")

// PolicyStore defines the interface for community policy operations
type PolicyStore interface {
	GetPolicy(ctx context.Context, communityID string) (*CommunityPolicy, error)
	SavePolicy(ctx context.Context, policy *CommunityPolicy) error
}

// ProfileStore defines the interface for native and external profile operations
type ProfileStore interface {
	GetCommunityProfiles(ctx context.Context, communityID string) ([]Profile, error)
	GetExternalProfiles(ctx context.Context, batchID string) ([]ExternalProfile, error)
	InsertExternalProfiles(ctx context.Context, profiles []ExternalProfile) error
}

// RunStore defines the interface for match run operations
type RunStore interface {
	InsertMatchRun(ctx context.Context, run *MatchRun, groups []MatchGroup) error
	GetMatchRun(ctx context.Context, runID string) (*MatchRun, []MatchGroup, error)
	// ApproveMatchRun moves a pending_review run to approved, or returns ErrRunNotPending
	ApproveMatchRun(ctx context.Context, runID string, at time.Time) error
	MarkRunIntroduced(ctx context.Context, runID string, at time.Time) error
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	PolicyStore
	ProfileStore
	RunStore
}
