package matcher

// NewAgeCriterion creates the age criterion.
// Age buckets are ordered, so closeness falls off linearly with the distance between buckets:
// neighboring buckets are closer than buckets at opposite ends of AgeGroups.
// Unknown buckets only match themselves.
func NewAgeCriterion(rule DimensionRule, mixBias MixBias, thresholds Thresholds) *CategoricalCriterion {
	return &CategoricalCriterion{
		name:       "Age",
		key:        DimensionAge,
		rule:       rule,
		mixBias:    mixBias,
		thresholds: thresholds,
		value:      func(c *CandidateProfile) string { return string(c.AgeGroup) },
		closeness:  ageCloseness,
	}
}

func ageCloseness(a, b string) float64 {
	if a == b {
		return 1.0
	}

	ordinalA := AgeGroup(a).Ordinal()
	ordinalB := AgeGroup(b).Ordinal()
	if ordinalA < 0 || ordinalB < 0 {
		return 0
	}

	distance := ordinalA - ordinalB
	if distance < 0 {
		distance = -distance
	}

	return 1.0 - float64(distance)/float64(len(AgeGroups)-1)
}
