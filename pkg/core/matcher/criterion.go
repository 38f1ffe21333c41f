package matcher

// GroupValidationError represents a rule violation found in a formed group or run result
type GroupValidationError struct {
	GroupIndex    int
	GroupID       string
	CriterionName string
	Description   string
}

// Criterion defines one matching dimension.
// Criteria decide both which candidates may share a group and how well they fit together.
type Criterion interface {
	// Name returns a human-readable identifier for this criterion
	Name() string

	// Key returns the policy dimension this criterion evaluates
	Key() DimensionKey

	// IsHard returns true if the criterion acts as a filter rather than a weighted preference
	IsHard() bool

	// Weight returns the contribution of the criterion to the aggregate score.
	// Hard criteria always return 0.
	Weight() float64

	// IsCandidateEligible checks the candidate on its own (allowed values, required presence).
	// Ineligible candidates can never be placed in a group.
	IsCandidateEligible(candidate *CandidateProfile) bool

	// IsGroupValid determines if the candidate may join the group.
	// This acts as a veto - if ANY criterion returns false, the candidate scores 0 against the group.
	IsGroupValid(candidate *CandidateProfile, group []*CandidateProfile) bool

	// CalculateAffinity returns how well the candidate fits the group on this dimension (0.0 - 1.0).
	// The value is multiplied by Weight when aggregating.
	CalculateAffinity(candidate *CandidateProfile, group []*CandidateProfile) float64
}

// CriteriaForPolicy builds the criteria for every active dimension of the policy.
// Dimensions that are neither hard nor weighted are left out.
func CriteriaForPolicy(policy *MatchingPolicy, thresholds Thresholds) []Criterion {
	criteria := make([]Criterion, 0, len(DimensionOrder))

	for _, key := range DimensionOrder {
		if !policy.Rule(key).IsActive() {
			continue
		}

		switch key {
		case DimensionGender:
			criteria = append(criteria, NewGenderCriterion(policy.Gender, policy.MixBias, thresholds))
		case DimensionLifeStage:
			criteria = append(criteria, NewLifeStageCriterion(policy.LifeStage, policy.MixBias, thresholds))
		case DimensionAge:
			criteria = append(criteria, NewAgeCriterion(policy.Age, policy.MixBias, thresholds))
		case DimensionFamilyStage:
			criteria = append(criteria, NewFamilyStageCriterion(policy.FamilyStage, policy.MixBias, thresholds))
		case DimensionLocation:
			criteria = append(criteria, NewLocationCriterion(policy.Location, thresholds))
		case DimensionSeason:
			criteria = append(criteria, NewSeasonCriterion(policy.Season, policy.MixBias, thresholds))
		}
	}

	return criteria
}
