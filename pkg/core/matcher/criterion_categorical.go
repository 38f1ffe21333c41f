package matcher

import "slices"

// CategoricalCriterion scores a categorical attribute against the set of values already in the group.
//
// Validity (hard rules only):
//   - Returns false if the candidate's value is not in the allowed list
//   - Returns false if the candidate lacks the value and the rule requires presence
//   - With "same" alignment, returns false if any member holds a different value
//
// Affinity (soft rules only):
//   - Neutral score if the candidate or every member lacks the value
//   - "same": 1.0 for a value already in the group, falling to the mismatch score as values diverge
//   - "mix" with diversify bias: 1.0 for a new value, falling to the mismatch score for a repeated one
//   - "mix" with neutral bias: always the neutral score
type CategoricalCriterion struct {
	name       string
	key        DimensionKey
	rule       DimensionRule
	mixBias    MixBias
	thresholds Thresholds

	// value extracts the attribute from a profile ("" when absent)
	value func(*CandidateProfile) string

	// closeness returns 1.0 for identical values down to 0.0 for the most distant ones
	closeness func(a, b string) float64
}

func exactCloseness(a, b string) float64 {
	if a == b {
		return 1.0
	}
	return 0
}

// NewGenderCriterion creates the gender criterion
func NewGenderCriterion(rule DimensionRule, mixBias MixBias, thresholds Thresholds) *CategoricalCriterion {
	return &CategoricalCriterion{
		name:       "Gender",
		key:        DimensionGender,
		rule:       rule,
		mixBias:    mixBias,
		thresholds: thresholds,
		value:      func(c *CandidateProfile) string { return c.Gender },
		closeness:  exactCloseness,
	}
}

// NewLifeStageCriterion creates the life-stage criterion
func NewLifeStageCriterion(rule DimensionRule, mixBias MixBias, thresholds Thresholds) *CategoricalCriterion {
	return &CategoricalCriterion{
		name:       "LifeStage",
		key:        DimensionLifeStage,
		rule:       rule,
		mixBias:    mixBias,
		thresholds: thresholds,
		value:      func(c *CandidateProfile) string { return c.LifeStage },
		closeness:  exactCloseness,
	}
}

// NewFamilyStageCriterion creates the family-stage criterion
func NewFamilyStageCriterion(rule DimensionRule, mixBias MixBias, thresholds Thresholds) *CategoricalCriterion {
	return &CategoricalCriterion{
		name:       "FamilyStage",
		key:        DimensionFamilyStage,
		rule:       rule,
		mixBias:    mixBias,
		thresholds: thresholds,
		value:      func(c *CandidateProfile) string { return c.FamilyStage },
		closeness:  exactCloseness,
	}
}

// NewSeasonCriterion creates the seasonal-interest criterion
func NewSeasonCriterion(rule DimensionRule, mixBias MixBias, thresholds Thresholds) *CategoricalCriterion {
	return &CategoricalCriterion{
		name:       "Season",
		key:        DimensionSeason,
		rule:       rule,
		mixBias:    mixBias,
		thresholds: thresholds,
		value:      func(c *CandidateProfile) string { return c.SeasonInterest },
		closeness:  exactCloseness,
	}
}

func (c *CategoricalCriterion) Name() string {
	return c.name
}

func (c *CategoricalCriterion) Key() DimensionKey {
	return c.key
}

func (c *CategoricalCriterion) IsHard() bool {
	return c.rule.Hard
}

func (c *CategoricalCriterion) Weight() float64 {
	if c.rule.Hard {
		return 0
	}
	return c.rule.Weight
}

func (c *CategoricalCriterion) IsCandidateEligible(candidate *CandidateProfile) bool {
	if !c.rule.Hard {
		return true
	}

	value := c.value(candidate)
	if value == "" {
		return !c.rule.RequirePresent
	}

	if len(c.rule.Allowed) > 0 && !slices.Contains(c.rule.Allowed, value) {
		return false
	}

	return true
}

func (c *CategoricalCriterion) IsGroupValid(candidate *CandidateProfile, group []*CandidateProfile) bool {
	if !c.rule.Hard {
		return true
	}

	if !c.IsCandidateEligible(candidate) {
		return false
	}

	value := c.value(candidate)
	if value == "" || c.rule.Alignment != AlignmentSame {
		return true
	}

	for _, member := range group {
		memberValue := c.value(member)
		if memberValue != "" && c.closeness(value, memberValue) < 1.0 {
			return false
		}
	}

	return true
}

func (c *CategoricalCriterion) CalculateAffinity(candidate *CandidateProfile, group []*CandidateProfile) float64 {
	value := c.value(candidate)
	if value == "" {
		return c.thresholds.NeutralScore
	}

	// Compare against the group's set of present values
	best := -1.0
	for _, member := range group {
		memberValue := c.value(member)
		if memberValue == "" {
			continue
		}
		best = max(best, c.closeness(value, memberValue))
	}

	if best < 0 {
		return c.thresholds.NeutralScore
	}

	mismatch := c.thresholds.MismatchScore

	if c.rule.Alignment == AlignmentSame {
		return mismatch + (1.0-mismatch)*best
	}

	if c.mixBias == MixBiasNeutral {
		return c.thresholds.NeutralScore
	}

	return 1.0 - (1.0-mismatch)*best
}
