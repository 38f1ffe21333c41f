package matcher

import "slices"

// AgeGroup is one bucket of the ordered age range set
type AgeGroup string

const (
	Age18To24    AgeGroup = "18-24"
	Age25To34    AgeGroup = "25-34"
	Age35To44    AgeGroup = "35-44"
	Age45To54    AgeGroup = "45-54"
	Age55To64    AgeGroup = "55-64"
	Age65AndOver AgeGroup = "65+"
)

// AgeGroups lists the age buckets in ascending order
var AgeGroups = []AgeGroup{Age18To24, Age25To34, Age35To44, Age45To54, Age55To64, Age65AndOver}

// Ordinal returns the position of the bucket in AgeGroups, or -1 if unknown
func (a AgeGroup) Ordinal() int {
	return slices.Index(AgeGroups, a)
}

// Season constants for seasonal interest
const (
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonFall   = "fall"
	SeasonWinter = "winter"
)

// Seasons is the fixed season set
var Seasons = []string{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter}

// CandidateProfile represents one member eligible for matching.
// Native profiles and imported external profiles are both normalized into this shape.
// Empty strings and nil pointers mean the attribute is absent.
type CandidateProfile struct {
	ID string

	AgeGroup    AgeGroup
	LifeStage   string
	FamilyStage string
	Gender      string

	// SeasonInterest is one of Seasons
	SeasonInterest string

	City   string
	Region string

	// Latitude and Longitude are optional coordinates in decimal degrees
	Latitude  *float64
	Longitude *float64

	// NeighborhoodID is the community the candidate nominally belongs to.
	// External-source candidates may not have one.
	NeighborhoodID string

	// GroupSizePreference is an optional hint; the policy target size always wins
	GroupSizePreference *int
}

// HasCoordinates returns true if both latitude and longitude are set
func (c CandidateProfile) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// PoolKind selects which target size of the policy applies to a run
type PoolKind string

const (
	PoolIndividuals PoolKind = "individuals"
	PoolFamilies    PoolKind = "families"
)

// MatchGroup is one formed group in a run
type MatchGroup struct {
	// ID is run-scoped and derived from the run seed and group position
	ID string

	// Members holds candidate IDs in the order they joined the group (seed first)
	Members []string

	// CompatibilityScore is the mean score of each member against the rest of the group,
	// under the criteria the group was formed with. A dimension relaxed by autoRelax does not count.
	CompatibilityScore float64

	// SourcePolicySnapshot is a copy of the policy used to form the group
	SourcePolicySnapshot MatchingPolicy
}

// MatchRunResult is the output of one Group Builder invocation.
// It is never mutated after construction.
type MatchRunResult struct {
	Groups   []MatchGroup
	Waitlist []string

	EligibleCount int
	GroupsFormed  int

	// Mode is copied from the policy so the caller knows whether to commit or hold for review
	Mode PolicyMode

	// Seed is the shuffle seed used, so unseeded runs can be reproduced
	Seed uint64
}

// SimulationSummary is the aggregate view returned by Simulate
type SimulationSummary struct {
	EligibleMembers int
	PotentialGroups int
	WaitlistMembers int
	Seed            uint64
}

// PlacedCount returns the number of candidates placed into groups
func (r *MatchRunResult) PlacedCount() int {
	count := 0
	for _, group := range r.Groups {
		count += len(group.Members)
	}
	return count
}
