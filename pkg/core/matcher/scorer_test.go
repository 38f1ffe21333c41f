package matcher

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreCandidate_EmptyGroup(t *testing.T) {
	policy := testPolicy()
	policy.Gender = DimensionRule{Alignment: AlignmentSame, Weight: 50}

	score := ScoreCandidate(CandidateProfile{ID: "a", Gender: GenderWomen}, nil, policy)
	assert.Equal(t, 1.0, score)
}

func TestScoreCandidate_NoWeightedPreference(t *testing.T) {
	policy := testPolicy()

	score := ScoreCandidate(
		CandidateProfile{ID: "a", Gender: GenderWomen},
		[]CandidateProfile{{ID: "b", Gender: GenderMen}},
		policy,
	)
	assert.Equal(t, 1.0, score)
}

func TestScoreCandidate_SameAlignment(t *testing.T) {
	policy := testPolicy()
	policy.Gender = DimensionRule{Alignment: AlignmentSame, Weight: 50}

	candidate := CandidateProfile{ID: "a", Gender: GenderWomen}

	assert.Equal(t, 1.0, ScoreCandidate(candidate, []CandidateProfile{{ID: "b", Gender: GenderWomen}}, policy))
	assert.InDelta(t, 0.4, ScoreCandidate(candidate, []CandidateProfile{{ID: "b", Gender: GenderMen}}, policy), 1e-9)

	// Any matching value in the group is enough
	mixed := []CandidateProfile{{ID: "b", Gender: GenderMen}, {ID: "c", Gender: GenderWomen}}
	assert.Equal(t, 1.0, ScoreCandidate(candidate, mixed, policy))
}

func TestScoreCandidate_AbsentAttributeIsNeutral(t *testing.T) {
	policy := testPolicy()
	policy.Gender = DimensionRule{Alignment: AlignmentSame, Weight: 50}

	assert.Equal(t, 0.5, ScoreCandidate(
		CandidateProfile{ID: "a"},
		[]CandidateProfile{{ID: "b", Gender: GenderWomen}},
		policy,
	))
	assert.Equal(t, 0.5, ScoreCandidate(
		CandidateProfile{ID: "a", Gender: GenderWomen},
		[]CandidateProfile{{ID: "b"}},
		policy,
	))
}

func TestScoreCandidate_MixDiversify(t *testing.T) {
	policy := testPolicy()
	policy.FamilyStage = DimensionRule{Alignment: AlignmentMix, Weight: 50}
	policy.MixBias = MixBiasDiversify

	candidate := CandidateProfile{ID: "a", FamilyStage: "youngKids"}

	assert.Equal(t, 1.0, ScoreCandidate(candidate, []CandidateProfile{{ID: "b", FamilyStage: "teens"}}, policy))
	assert.InDelta(t, 0.4, ScoreCandidate(candidate, []CandidateProfile{{ID: "b", FamilyStage: "youngKids"}}, policy), 1e-9)
}

func TestScoreCandidate_MixNeutral(t *testing.T) {
	policy := testPolicy()
	policy.FamilyStage = DimensionRule{Alignment: AlignmentMix, Weight: 50}
	policy.MixBias = MixBiasNeutral

	candidate := CandidateProfile{ID: "a", FamilyStage: "youngKids"}

	assert.Equal(t, 0.5, ScoreCandidate(candidate, []CandidateProfile{{ID: "b", FamilyStage: "teens"}}, policy))
	assert.Equal(t, 0.5, ScoreCandidate(candidate, []CandidateProfile{{ID: "b", FamilyStage: "youngKids"}}, policy))
}

func TestScoreCandidate_AgeClosenessIsOrdinal(t *testing.T) {
	policy := testPolicy()
	policy.Age = DimensionRule{Alignment: AlignmentSame, Weight: 60}

	candidate := CandidateProfile{ID: "a", AgeGroup: Age18To24}

	adjacent := ScoreCandidate(candidate, []CandidateProfile{{ID: "b", AgeGroup: Age25To34}}, policy)
	distant := ScoreCandidate(candidate, []CandidateProfile{{ID: "b", AgeGroup: Age65AndOver}}, policy)

	// 0.4 + 0.6 * (1 - 1/5)
	assert.InDelta(t, 0.88, adjacent, 1e-9)
	assert.InDelta(t, 0.4, distant, 1e-9)
	assert.Greater(t, adjacent, distant)
}

func TestScoreCandidate_WeightedMean(t *testing.T) {
	policy := testPolicy()
	policy.Gender = DimensionRule{Alignment: AlignmentSame, Weight: 50}
	policy.Age = DimensionRule{Alignment: AlignmentSame, Weight: 50}

	score := ScoreCandidate(
		CandidateProfile{ID: "a", Gender: GenderWomen, AgeGroup: Age18To24},
		[]CandidateProfile{{ID: "b", Gender: GenderWomen, AgeGroup: Age65AndOver}},
		policy,
	)

	// (1.0 * 50 + 0.4 * 50) / 100
	assert.InDelta(t, 0.7, score, 1e-9)
}

func TestScoreCandidate_WeightsNeedNotSumTo100(t *testing.T) {
	policy := testPolicy()
	policy.Gender = DimensionRule{Alignment: AlignmentSame, Weight: 5}
	policy.Age = DimensionRule{Alignment: AlignmentSame, Weight: 5}

	score := ScoreCandidate(
		CandidateProfile{ID: "a", Gender: GenderWomen, AgeGroup: Age18To24},
		[]CandidateProfile{{ID: "b", Gender: GenderWomen, AgeGroup: Age65AndOver}},
		policy,
	)
	assert.InDelta(t, 0.7, score, 1e-9)
}

func TestScoreCandidate_HardViolationIsZero(t *testing.T) {
	policy := testPolicy()
	policy.Gender = DimensionRule{Alignment: AlignmentSame, Hard: true}
	policy.Age = DimensionRule{Alignment: AlignmentSame, Weight: 100}

	score := ScoreCandidate(
		CandidateProfile{ID: "a", Gender: GenderMen, AgeGroup: Age25To34},
		[]CandidateProfile{{ID: "b", Gender: GenderWomen, AgeGroup: Age25To34}},
		policy,
	)
	assert.Equal(t, 0.0, score)
}

func TestScoreCandidate_HardAllowedList(t *testing.T) {
	policy := testPolicy()
	policy.Gender = DimensionRule{Alignment: AlignmentSame, Hard: true, Allowed: []string{GenderWomen}}

	group := []CandidateProfile{{ID: "b", Gender: GenderWomen}}

	assert.Equal(t, 1.0, ScoreCandidate(CandidateProfile{ID: "a", Gender: GenderWomen}, group, policy))
	assert.Equal(t, 0.0, ScoreCandidate(CandidateProfile{ID: "a", Gender: GenderMen}, group, policy))
}

func TestScoreCandidate_HardRequirePresent(t *testing.T) {
	policy := testPolicy()
	policy.Season = DimensionRule{Alignment: AlignmentSame, Hard: true, RequirePresent: true}

	group := []CandidateProfile{{ID: "b", SeasonInterest: SeasonSummer}}

	assert.Equal(t, 0.0, ScoreCandidate(CandidateProfile{ID: "a"}, group, policy))
	assert.Equal(t, 1.0, ScoreCandidate(CandidateProfile{ID: "a", SeasonInterest: SeasonSummer}, group, policy))
}

func TestScoreCandidate_InsideOnlyVetoesEvenWhenSoft(t *testing.T) {
	policy := testPolicy()
	policy.Location = LocationRule{
		DimensionRule: DimensionRule{Alignment: AlignmentSame, Weight: 10},
		Scope:         ScopeInsideOnly,
	}
	policy.Age = DimensionRule{Alignment: AlignmentSame, Weight: 90}

	candidate := CandidateProfile{ID: "a", NeighborhoodID: "N1", AgeGroup: Age25To34}

	assert.Equal(t, 0.0, ScoreCandidate(candidate, []CandidateProfile{{ID: "b", NeighborhoodID: "N2", AgeGroup: Age25To34}}, policy))
	assert.Equal(t, 1.0, ScoreCandidate(candidate, []CandidateProfile{{ID: "b", NeighborhoodID: "N1", AgeGroup: Age25To34}}, policy))

	// Unknown neighborhood is neutral, not a veto
	score := ScoreCandidate(candidate, []CandidateProfile{{ID: "b", AgeGroup: Age25To34}}, policy)
	assert.InDelta(t, (0.5*10+1.0*90)/100, score, 1e-9)
}

func TestScoreCandidate_NearbyByCoordinates(t *testing.T) {
	policy := testPolicy()
	policy.Location = LocationRule{
		DimensionRule:    DimensionRule{Alignment: AlignmentSame, Weight: 100},
		Scope:            ScopeNearbyOk,
		MaxDistanceMiles: 5,
	}

	candidate := CandidateProfile{ID: "a", NeighborhoodID: "N1", Latitude: floatPtr(51.5), Longitude: floatPtr(0.0)}
	near := CandidateProfile{ID: "b", NeighborhoodID: "N2", Latitude: floatPtr(51.51), Longitude: floatPtr(0.0)}
	far := CandidateProfile{ID: "c", NeighborhoodID: "N3", Latitude: floatPtr(52.5), Longitude: floatPtr(0.0)}

	assert.Equal(t, 1.0, ScoreCandidate(candidate, []CandidateProfile{near}, policy))
	assert.InDelta(t, 0.4, ScoreCandidate(candidate, []CandidateProfile{far}, policy), 1e-9)

	// Pairwise scores are averaged over the whole group
	assert.InDelta(t, 0.7, ScoreCandidate(candidate, []CandidateProfile{near, far}, policy), 1e-9)
}

func TestScoreCandidate_SameCommunityWeight(t *testing.T) {
	policy := testPolicy()
	policy.Location = LocationRule{
		DimensionRule:       DimensionRule{Alignment: AlignmentSame, Weight: 100},
		Scope:               ScopeNearbyOk,
		MaxDistanceMiles:    5,
		SameCommunityWeight: 50,
	}

	candidate := CandidateProfile{ID: "a", NeighborhoodID: "N1", Latitude: floatPtr(51.5), Longitude: floatPtr(0.0)}
	same := CandidateProfile{ID: "b", NeighborhoodID: "N1"}
	near := CandidateProfile{ID: "c", NeighborhoodID: "N2", Latitude: floatPtr(51.51), Longitude: floatPtr(0.0)}
	far := CandidateProfile{ID: "d", NeighborhoodID: "N3", Latitude: floatPtr(52.5), Longitude: floatPtr(0.0)}

	assert.Equal(t, 1.0, ScoreCandidate(candidate, []CandidateProfile{same}, policy))
	assert.InDelta(t, 0.75, ScoreCandidate(candidate, []CandidateProfile{near}, policy), 1e-9)
	assert.InDelta(t, 0.2, ScoreCandidate(candidate, []CandidateProfile{far}, policy), 1e-9)
}

func TestScoreCandidate_NearbyByAdjacency(t *testing.T) {
	policy := testPolicy()
	policy.Location = LocationRule{
		DimensionRule: DimensionRule{Alignment: AlignmentSame, Weight: 100},
		Scope:         ScopeNearbyOk,
		Adjacency: map[string][]string{
			"N1": {"N2"},
			"N3": {},
		},
	}

	candidate := CandidateProfile{ID: "a", NeighborhoodID: "N1"}

	assert.Equal(t, 1.0, ScoreCandidate(candidate, []CandidateProfile{{ID: "b", NeighborhoodID: "N2"}}, policy))
	assert.InDelta(t, 0.4, ScoreCandidate(candidate, []CandidateProfile{{ID: "b", NeighborhoodID: "N3"}}, policy), 1e-9)

	// Adjacency is symmetric
	assert.Equal(t, 1.0, ScoreCandidate(CandidateProfile{ID: "b", NeighborhoodID: "N2"}, []CandidateProfile{candidate}, policy))

	// Neighborhoods missing from the map are unknown
	assert.Equal(t, 0.5, ScoreCandidate(CandidateProfile{ID: "x", NeighborhoodID: "N8"}, []CandidateProfile{{ID: "y", NeighborhoodID: "N9"}}, policy))
}

func TestScoreCandidate_HardNearbyVetoesFar(t *testing.T) {
	policy := testPolicy()
	policy.Location = LocationRule{
		DimensionRule:    DimensionRule{Alignment: AlignmentSame, Hard: true},
		Scope:            ScopeNearbyOk,
		MaxDistanceMiles: 5,
	}

	candidate := CandidateProfile{ID: "a", Latitude: floatPtr(51.5), Longitude: floatPtr(0.0)}
	far := CandidateProfile{ID: "b", Latitude: floatPtr(52.5), Longitude: floatPtr(0.0)}

	assert.Equal(t, 0.0, ScoreCandidate(candidate, []CandidateProfile{far}, policy))
}

func TestScoreCandidate_CustomThresholds(t *testing.T) {
	policy := testPolicy()
	policy.Gender = DimensionRule{Alignment: AlignmentSame, Weight: 50}

	thresholds := DefaultThresholds
	thresholds.MismatchScore = 0.3
	thresholds.NeutralScore = 0.6

	candidate := CandidateProfile{ID: "a", Gender: GenderWomen}

	assert.InDelta(t, 0.3, ScoreCandidateWithThresholds(candidate, []CandidateProfile{{ID: "b", Gender: GenderMen}}, policy, thresholds), 1e-9)
	assert.InDelta(t, 0.6, ScoreCandidateWithThresholds(candidate, []CandidateProfile{{ID: "b"}}, policy, thresholds), 1e-9)
}

func TestScoreCandidate_AlwaysBounded(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	genders := []string{"", GenderWomen, GenderMen}
	stages := []string{"", "single", "couple", "retired"}
	neighborhoods := []string{"", "N1", "N2"}

	randomProfile := func(id string) CandidateProfile {
		profile := CandidateProfile{
			ID:             id,
			Gender:         genders[rng.IntN(len(genders))],
			LifeStage:      stages[rng.IntN(len(stages))],
			FamilyStage:    stages[rng.IntN(len(stages))],
			SeasonInterest: Seasons[rng.IntN(len(Seasons))],
			AgeGroup:       AgeGroups[rng.IntN(len(AgeGroups))],
			NeighborhoodID: neighborhoods[rng.IntN(len(neighborhoods))],
		}
		if rng.IntN(2) == 0 {
			profile.Latitude = floatPtr(51 + rng.Float64())
			profile.Longitude = floatPtr(rng.Float64())
		}
		return profile
	}

	for _, template := range Templates() {
		for i := 0; i < 200; i++ {
			group := make([]CandidateProfile, rng.IntN(5))
			for j := range group {
				group[j] = randomProfile("m")
			}

			score := ScoreCandidate(randomProfile("c"), group, template.Policy)
			assert.GreaterOrEqual(t, score, 0.0, template.Name)
			assert.LessOrEqual(t, score, 1.0, template.Name)
		}
	}
}
