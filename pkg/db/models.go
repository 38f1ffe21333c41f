package db

import (
	"time"

	"github.com/jakechorley/neighbourly/pkg/core/matcher"
)

// Household types of a native profile, selecting the pool it is matched in
const (
	HouseholdIndividual = "individual"
	HouseholdFamily     = "family"
)

// Match run sources
const (
	SourceNative   = "native"
	SourceExternal = "external"
)

// Match run statuses
const (
	RunStatusPendingReview = "pending_review"
	RunStatusApproved      = "approved"
	RunStatusCommitted     = "committed"
)

// CommunityPolicy is the stored matching policy of one community
type CommunityPolicy struct {
	CommunityID string
	Template    string
	Policy      matcher.MatchingPolicy
	UpdatedAt   time.Time
}

// Profile is a native member profile
type Profile struct {
	ID          string
	CommunityID string
	DisplayName string
	Email       string

	AgeGroup       string
	LifeStage      string
	FamilyStage    string
	Gender         string
	SeasonInterest string

	City      string
	Region    string
	Latitude  *float64
	Longitude *float64

	NeighborhoodID      string
	GroupSizePreference *int

	HouseholdType string
	Active        bool
}

// ExternalProfile is a member imported from an external batch.
// External profiles carry no neighborhood.
type ExternalProfile struct {
	ID          string
	BatchID     string
	ExternalRef string
	DisplayName string
	Email       string

	AgeGroup       string
	LifeStage      string
	FamilyStage    string
	Gender         string
	SeasonInterest string

	City      string
	Region    string
	Latitude  *float64
	Longitude *float64

	GroupSizePreference *int
	ImportedAt          time.Time
}

// MatchRun is one persisted group builder run
type MatchRun struct {
	ID          string
	CommunityID string
	BatchID     string
	Source      string
	PoolKind    matcher.PoolKind
	Mode        matcher.PolicyMode
	Status      string
	Seed        uint64

	EligibleCount int
	GroupsFormed  int
	Waitlist      []string

	PolicySnapshot matcher.MatchingPolicy

	CreatedAt  time.Time
	ApprovedAt *time.Time

	// IntroducedAt is set once every group has been introduced
	IntroducedAt *time.Time
}

// MatchGroup is one persisted group of a run, with members in join order
type MatchGroup struct {
	ID                 string
	RunID              string
	Position           int
	CompatibilityScore float64
	Members            []string
}

// Contact is how a matched member is reached
type Contact struct {
	Name  string
	Email string
}
