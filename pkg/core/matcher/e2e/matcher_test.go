package e2e

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/jakechorley/neighbourly/pkg/core/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// communityPool builds a realistic mixed community of n members
func communityPool(rng *rand.Rand, n int) []CandidateProfile {
	genders := []string{matcher.GenderWomen, matcher.GenderMen, ""}
	lifeStages := []string{"student", "earlyCareer", "established", "retired", ""}
	familyStages := []string{"noKids", "youngKids", "teens", "emptyNest", ""}
	neighborhoods := []string{"harbour", "old-town", "riverside", ""}

	// Rough centers for each neighborhood
	centers := map[string][2]float64{
		"harbour":   {51.500, -0.120},
		"old-town":  {51.520, -0.100},
		"riverside": {51.470, -0.180},
	}

	pool := make([]CandidateProfile, n)
	for i := range pool {
		neighborhood := neighborhoods[rng.IntN(len(neighborhoods))]
		profile := CandidateProfile{
			ID:             fmt.Sprintf("member-%03d", i),
			AgeGroup:       matcher.AgeGroups[rng.IntN(len(matcher.AgeGroups))],
			LifeStage:      lifeStages[rng.IntN(len(lifeStages))],
			FamilyStage:    familyStages[rng.IntN(len(familyStages))],
			Gender:         genders[rng.IntN(len(genders))],
			SeasonInterest: matcher.Seasons[rng.IntN(len(matcher.Seasons))],
			City:           "Portsmouth",
			NeighborhoodID: neighborhood,
		}
		if center, ok := centers[neighborhood]; ok && rng.IntN(3) > 0 {
			lat := center[0] + (rng.Float64()-0.5)*0.02
			lon := center[1] + (rng.Float64()-0.5)*0.02
			profile.Latitude = &lat
			profile.Longitude = &lon
		}
		pool[i] = profile
	}
	return pool
}

func TestMatcher_PropertiesHoldForEveryTemplate(t *testing.T) {
	strategies := []FallbackStrategy{matcher.FallbackFillPartial, matcher.FallbackAutoRelax, matcher.FallbackWaitlist}

	for _, name := range TemplateNames() {
		for _, strategy := range strategies {
			t.Run(fmt.Sprintf("%s/%s", name, strategy), func(t *testing.T) {
				policy, err := PolicyFromTemplate(name)
				require.NoError(t, err)
				policy.FallbackStrategy = strategy

				for seed := uint64(1); seed <= 10; seed++ {
					rng := rand.New(rand.NewPCG(seed, 0))
					pool := communityPool(rng, 10+rng.IntN(50))

					result, err := BuildGroups(pool, policy, WithSeed(seed))
					require.NoError(t, err)

					violations := ValidateRunResult(result, pool, policy)
					assert.Empty(t, violations, "seed %d", seed)

					assert.Equal(t, len(pool), result.EligibleCount)
					assert.Equal(t, len(result.Groups), result.GroupsFormed)
					assert.Equal(t, len(pool), result.PlacedCount()+len(result.Waitlist))

					for _, group := range result.Groups {
						assert.GreaterOrEqual(t, group.CompatibilityScore, 0.0)
						assert.LessOrEqual(t, group.CompatibilityScore, 1.0)
					}
				}
			})
		}
	}
}

func TestMatcher_FamilyPools(t *testing.T) {
	policy, err := PolicyFromTemplate(matcher.TemplateFamilyTable)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(3, 3))
	pool := communityPool(rng, 40)

	result, err := BuildGroups(pool, policy, WithSeed(3), WithPoolKind(matcher.PoolFamilies))
	require.NoError(t, err)

	for _, group := range result.Groups {
		assert.LessOrEqual(t, len(group.Members), policy.FamilyGroupSize)
	}
	assert.Empty(t, ValidateRunResult(result, pool, policy, WithPoolKind(matcher.PoolFamilies)))
}

func TestMatcher_SimulationMatchesRun(t *testing.T) {
	policy, err := PolicyFromTemplate(matcher.TemplateDinnerClub)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(5, 5))
	pool := communityPool(rng, 36)

	result, err := BuildGroups(pool, policy, WithSeed(77))
	require.NoError(t, err)

	summary, err := Simulate(pool, policy, WithSeed(77))
	require.NoError(t, err)

	assert.Equal(t, SimulationSummary{
		EligibleMembers: result.EligibleCount,
		PotentialGroups: result.GroupsFormed,
		WaitlistMembers: len(result.Waitlist),
		Seed:            77,
	}, summary)
}

func TestMatcher_NeighborsNearbyKeepsNeighborhoodsApart(t *testing.T) {
	policy, err := PolicyFromTemplate(matcher.TemplateNeighborsNearby)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(9, 9))
	pool := communityPool(rng, 48)

	neighborhoodOf := make(map[string]string, len(pool))
	for _, c := range pool {
		neighborhoodOf[c.ID] = c.NeighborhoodID
	}

	result, err := BuildGroups(pool, policy, WithSeed(9))
	require.NoError(t, err)

	for _, group := range result.Groups {
		known := ""
		for _, id := range group.Members {
			neighborhood := neighborhoodOf[id]
			if neighborhood == "" {
				continue
			}
			if known == "" {
				known = neighborhood
			}
			assert.Equal(t, known, neighborhood, "group %s spans neighborhoods", group.ID)
		}
	}
}
