package matcher

import "slices"

// LocationCriterion keeps groups geographically close.
//
// Validity:
//   - insideOnly: returns false if the candidate and any member belong to different known neighborhoods.
//     This applies even when the rule is not marked hard.
//   - nearbyOk (hard only): returns false if any member is known to live beyond the allowed distance
//   - Hard rules also check the allowed neighborhood list and required presence
//
// Affinity is the mean of pairwise scores against every member:
//   - Same neighborhood: 1.0
//   - Nearby (within MaxDistanceMiles, or adjacent): reduced by up to half as SameCommunityWeight rises
//   - Far: the mismatch score, reduced further as SameCommunityWeight rises
//   - Unknown (missing neighborhood and coordinates): neutral score
type LocationCriterion struct {
	rule       LocationRule
	thresholds Thresholds
}

// NewLocationCriterion creates the location criterion
func NewLocationCriterion(rule LocationRule, thresholds Thresholds) *LocationCriterion {
	return &LocationCriterion{
		rule:       rule,
		thresholds: thresholds,
	}
}

func (c *LocationCriterion) Name() string {
	return "Location"
}

func (c *LocationCriterion) Key() DimensionKey {
	return DimensionLocation
}

func (c *LocationCriterion) IsHard() bool {
	return c.rule.Hard
}

func (c *LocationCriterion) Weight() float64 {
	if c.rule.Hard {
		return 0
	}
	return c.rule.Weight
}

func (c *LocationCriterion) IsCandidateEligible(candidate *CandidateProfile) bool {
	if !c.rule.Hard {
		return true
	}

	if candidate.NeighborhoodID == "" {
		if len(c.rule.Allowed) > 0 {
			return false
		}
		if c.rule.RequirePresent && !candidate.HasCoordinates() {
			return false
		}
		// insideOnly cannot be checked without a neighborhood
		if c.rule.RequirePresent && c.rule.Scope == ScopeInsideOnly {
			return false
		}
		return true
	}

	if len(c.rule.Allowed) > 0 && !slices.Contains(c.rule.Allowed, candidate.NeighborhoodID) {
		return false
	}

	return true
}

func (c *LocationCriterion) IsGroupValid(candidate *CandidateProfile, group []*CandidateProfile) bool {
	if !c.IsCandidateEligible(candidate) {
		return false
	}

	for _, member := range group {
		switch c.rule.Scope {
		case ScopeInsideOnly:
			if candidate.NeighborhoodID != "" && member.NeighborhoodID != "" &&
				candidate.NeighborhoodID != member.NeighborhoodID {
				return false
			}
		case ScopeNearbyOk:
			if c.rule.Hard && proximityOf(candidate, member, &c.rule) == proximityFar {
				return false
			}
		}
	}

	return true
}

func (c *LocationCriterion) CalculateAffinity(candidate *CandidateProfile, group []*CandidateProfile) float64 {
	if len(group) == 0 {
		return c.thresholds.NeutralScore
	}

	total := 0.0
	for _, member := range group {
		total += c.pairScore(candidate, member)
	}

	return total / float64(len(group))
}

func (c *LocationCriterion) pairScore(a, b *CandidateProfile) float64 {
	if c.rule.Scope == ScopeInsideOnly {
		switch {
		case a.NeighborhoodID == "" || b.NeighborhoodID == "":
			return c.thresholds.NeutralScore
		case a.NeighborhoodID == b.NeighborhoodID:
			return 1.0
		default:
			return 0
		}
	}

	sameCommunityBias := c.rule.SameCommunityWeight / 100

	switch proximityOf(a, b, &c.rule) {
	case proximitySameNeighborhood:
		return 1.0
	case proximityNearby:
		return 1.0 - 0.5*sameCommunityBias
	case proximityFar:
		return c.thresholds.MismatchScore * (1.0 - sameCommunityBias)
	default:
		return c.thresholds.NeutralScore
	}
}
