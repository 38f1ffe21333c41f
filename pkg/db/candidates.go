package db

import (
	"strings"

	"github.com/jakechorley/neighbourly/pkg/core/matcher"
)

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Candidate normalizes a native profile for matching
func (p Profile) Candidate() matcher.CandidateProfile {
	return matcher.CandidateProfile{
		ID:                  p.ID,
		AgeGroup:            matcher.AgeGroup(strings.TrimSpace(p.AgeGroup)),
		LifeStage:           strings.TrimSpace(p.LifeStage),
		FamilyStage:         strings.TrimSpace(p.FamilyStage),
		Gender:              normalize(p.Gender),
		SeasonInterest:      normalize(p.SeasonInterest),
		City:                strings.TrimSpace(p.City),
		Region:              strings.TrimSpace(p.Region),
		Latitude:            p.Latitude,
		Longitude:           p.Longitude,
		NeighborhoodID:      strings.TrimSpace(p.NeighborhoodID),
		GroupSizePreference: p.GroupSizePreference,
	}
}

// Candidate normalizes an imported profile for matching
func (p ExternalProfile) Candidate() matcher.CandidateProfile {
	return matcher.CandidateProfile{
		ID:                  p.ID,
		AgeGroup:            matcher.AgeGroup(strings.TrimSpace(p.AgeGroup)),
		LifeStage:           strings.TrimSpace(p.LifeStage),
		FamilyStage:         strings.TrimSpace(p.FamilyStage),
		Gender:              normalize(p.Gender),
		SeasonInterest:      normalize(p.SeasonInterest),
		City:                strings.TrimSpace(p.City),
		Region:              strings.TrimSpace(p.Region),
		Latitude:            p.Latitude,
		Longitude:           p.Longitude,
		GroupSizePreference: p.GroupSizePreference,
	}
}

// CandidatesFromProfiles returns the active profiles of the pool kind as candidates.
// Family profiles form the families pool, everyone else the individuals pool.
func CandidatesFromProfiles(profiles []Profile, kind matcher.PoolKind) ([]matcher.CandidateProfile, map[string]Contact) {
	var candidates []matcher.CandidateProfile
	contacts := make(map[string]Contact)

	for _, p := range profiles {
		if !p.Active {
			continue
		}
		isFamily := p.HouseholdType == HouseholdFamily
		if isFamily != (kind == matcher.PoolFamilies) {
			continue
		}
		candidates = append(candidates, p.Candidate())
		contacts[p.ID] = Contact{Name: p.DisplayName, Email: p.Email}
	}

	return candidates, contacts
}

// CandidatesFromExternal returns every imported profile of a batch as candidates
func CandidatesFromExternal(profiles []ExternalProfile) ([]matcher.CandidateProfile, map[string]Contact) {
	candidates := make([]matcher.CandidateProfile, 0, len(profiles))
	contacts := make(map[string]Contact, len(profiles))

	for _, p := range profiles {
		candidates = append(candidates, p.Candidate())
		contacts[p.ID] = Contact{Name: p.DisplayName, Email: p.Email}
	}

	return candidates, contacts
}
