package matcher

// ScoreCandidate computes the compatibility score (0.0 - 1.0) between a candidate and a
// partially-formed group under the given policy, using DefaultThresholds.
//
// Returns 1.0 if the group is empty or the policy expresses no weighted preference.
// Returns 0 if any hard constraint is violated.
// Otherwise returns the weighted mean of the soft dimension affinities.
func ScoreCandidate(candidate CandidateProfile, group []CandidateProfile, policy MatchingPolicy) float64 {
	return ScoreCandidateWithThresholds(candidate, group, policy, DefaultThresholds)
}

// ScoreCandidateWithThresholds is ScoreCandidate with explicit tunables
func ScoreCandidateWithThresholds(candidate CandidateProfile, group []CandidateProfile, policy MatchingPolicy, thresholds Thresholds) float64 {
	members := make([]*CandidateProfile, len(group))
	for i := range group {
		members[i] = &group[i]
	}

	criteria := CriteriaForPolicy(&policy, thresholds)
	return CalculateGroupAffinity(&candidate, members, criteria)
}

// IsGroupValidForCandidate checks if a candidate may join a group.
//
// Returns false if any criterion's IsGroupValid hook returns false (constraint violation).
// Otherwise returns true.
func IsGroupValidForCandidate(candidate *CandidateProfile, group []*CandidateProfile, criteria []Criterion) bool {
	for _, criterion := range criteria {
		if !criterion.IsGroupValid(candidate, group) {
			return false
		}
	}
	return true
}

// CalculateGroupAffinity computes the score between a candidate and a group for a prepared set of criteria.
//
// Hard criteria only veto. Soft criteria are aggregated as a weighted mean normalized by
// the total active weight, so weights do not need to sum to 100.
func CalculateGroupAffinity(candidate *CandidateProfile, group []*CandidateProfile, criteria []Criterion) float64 {
	// No comparison possible for the first member of a group
	if len(group) == 0 {
		return 1.0
	}

	if !IsGroupValidForCandidate(candidate, group, criteria) {
		return 0
	}

	totalWeight := 0.0
	weightedSum := 0.0
	for _, criterion := range criteria {
		weight := criterion.Weight()
		if criterion.IsHard() || weight <= 0 {
			continue
		}

		affinity := criterion.CalculateAffinity(candidate, group)
		weightedSum += clampUnit(affinity) * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 1.0
	}

	return clampUnit(weightedSum / totalWeight)
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1.0 {
		return 1.0
	}
	return value
}
