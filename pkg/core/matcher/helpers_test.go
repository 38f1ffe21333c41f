package matcher

import "fmt"

// testPolicy returns a valid policy with every dimension inactive
func testPolicy() MatchingPolicy {
	return MatchingPolicy{
		Mode:             ModeAutomatic,
		DefaultGroupSize: 4,
		FamilyGroupSize:  4,
		Gender:           DimensionRule{Alignment: AlignmentMix},
		LifeStage:        DimensionRule{Alignment: AlignmentMix},
		Age:              DimensionRule{Alignment: AlignmentMix},
		FamilyStage:      DimensionRule{Alignment: AlignmentMix},
		Season:           DimensionRule{Alignment: AlignmentMix},
		Location: LocationRule{
			DimensionRule: DimensionRule{Alignment: AlignmentSame},
			Scope:         ScopeInsideOnly,
		},
		FallbackStrategy: FallbackFillPartial,
		MixBias:          MixBiasDiversify,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

// candidates creates n profiles with IDs prefix1..prefixN, customized by fn
func candidates(prefix string, n int, fn func(*CandidateProfile)) []CandidateProfile {
	result := make([]CandidateProfile, n)
	for i := range result {
		result[i] = CandidateProfile{ID: fmt.Sprintf("%s%d", prefix, i+1)}
		if fn != nil {
			fn(&result[i])
		}
	}
	return result
}

// membersByID maps every grouped candidate ID to its group index
func membersByID(result *MatchRunResult) map[string]int {
	index := make(map[string]int)
	for i, group := range result.Groups {
		for _, id := range group.Members {
			index[id] = i
		}
	}
	return index
}
