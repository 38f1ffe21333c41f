package db

import (
	"testing"

	"github.com/jakechorley/neighbourly/pkg/core/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileCandidate_Normalizes(t *testing.T) {
	lat, lon := 51.5, -0.12
	size := 6
	profile := Profile{
		ID:                  "p1",
		AgeGroup:            " 25-34 ",
		LifeStage:           "earlyCareer",
		Gender:              " Women",
		SeasonInterest:      "Summer",
		City:                "Portsmouth ",
		Latitude:            &lat,
		Longitude:           &lon,
		NeighborhoodID:      "harbour",
		GroupSizePreference: &size,
	}

	candidate := profile.Candidate()

	assert.Equal(t, "p1", candidate.ID)
	assert.Equal(t, matcher.Age25To34, candidate.AgeGroup)
	assert.Equal(t, matcher.GenderWomen, candidate.Gender)
	assert.Equal(t, matcher.SeasonSummer, candidate.SeasonInterest)
	assert.Equal(t, "Portsmouth", candidate.City)
	assert.Equal(t, "harbour", candidate.NeighborhoodID)
	assert.True(t, candidate.HasCoordinates())
	require.NotNil(t, candidate.GroupSizePreference)
	assert.Equal(t, 6, *candidate.GroupSizePreference)
}

func TestCandidatesFromProfiles_SplitsPools(t *testing.T) {
	profiles := []Profile{
		{ID: "a", HouseholdType: HouseholdIndividual, Active: true, Email: "a@example.com"},
		{ID: "b", HouseholdType: "", Active: true},
		{ID: "c", HouseholdType: HouseholdFamily, Active: true, Email: "c@example.com"},
		{ID: "d", HouseholdType: HouseholdIndividual, Active: false},
	}

	individuals, contacts := CandidatesFromProfiles(profiles, matcher.PoolIndividuals)
	require.Len(t, individuals, 2)
	assert.Equal(t, "a", individuals[0].ID)
	assert.Equal(t, "b", individuals[1].ID)
	assert.Equal(t, Contact{Email: "a@example.com"}, contacts["a"])
	assert.NotContains(t, contacts, "d")

	families, contacts := CandidatesFromProfiles(profiles, matcher.PoolFamilies)
	require.Len(t, families, 1)
	assert.Equal(t, "c", families[0].ID)
	assert.Len(t, contacts, 1)
}

func TestCandidatesFromExternal(t *testing.T) {
	profiles := []ExternalProfile{
		{ID: "x1", BatchID: "batch", DisplayName: "Sam", Email: "sam@example.com", Gender: "MEN"},
		{ID: "x2", BatchID: "batch", AgeGroup: "65+"},
	}

	candidates, contacts := CandidatesFromExternal(profiles)

	require.Len(t, candidates, 2)
	assert.Equal(t, matcher.GenderMen, candidates[0].Gender)
	assert.Empty(t, candidates[0].NeighborhoodID)
	assert.Equal(t, matcher.Age65AndOver, candidates[1].AgeGroup)
	assert.Equal(t, Contact{Name: "Sam", Email: "sam@example.com"}, contacts["x1"])
}
