package matcher

import "fmt"

// ValidateRunResult checks a finished run against the candidates and policy it was built from.
// Returns a slice of validation errors for any violation; an empty slice means the run is sound.
//
// Checked:
//   - No group exceeds the target size
//   - No group is below the minimum group size
//   - Every candidate appears exactly once across the groups and the waitlist
//   - No member of a group violates a hard rule against the rest of its group
//
// Errors that do not belong to a single group have a GroupIndex of -1.
func ValidateRunResult(result *MatchRunResult, candidates []CandidateProfile, policy MatchingPolicy, opts ...Option) []GroupValidationError {
	options := resolveOptions(opts)
	target := policy.TargetSize(options.poolKind)
	minSize := policy.EffectiveMinGroupSize(options.poolKind, options.thresholds)
	criteria := CriteriaForPolicy(&policy, options.thresholds)

	var errors []GroupValidationError

	byID := make(map[string]*CandidateProfile, len(candidates))
	for i := range candidates {
		byID[candidates[i].ID] = &candidates[i]
	}

	seen := make(map[string]int, len(candidates))

	for i, group := range result.Groups {
		if len(group.Members) > target {
			errors = append(errors, GroupValidationError{
				GroupIndex:    i,
				GroupID:       group.ID,
				CriterionName: "GroupSize",
				Description:   fmt.Sprintf("group has %d members, target size is %d", len(group.Members), target),
			})
		}
		if len(group.Members) < minSize {
			errors = append(errors, GroupValidationError{
				GroupIndex:    i,
				GroupID:       group.ID,
				CriterionName: "GroupSize",
				Description:   fmt.Sprintf("group has %d members, minimum size is %d", len(group.Members), minSize),
			})
		}

		members := make([]*CandidateProfile, 0, len(group.Members))
		for _, id := range group.Members {
			seen[id]++
			if profile, ok := byID[id]; ok {
				members = append(members, profile)
			}
		}

		errors = append(errors, validateGroupCriteria(i, group.ID, members, criteria)...)
	}

	for _, id := range result.Waitlist {
		seen[id]++
	}

	for _, candidate := range candidates {
		switch count := seen[candidate.ID]; {
		case count == 0:
			errors = append(errors, GroupValidationError{
				GroupIndex:    -1,
				CriterionName: "Partition",
				Description:   fmt.Sprintf("candidate %s is neither grouped nor waitlisted", candidate.ID),
			})
		case count > 1:
			errors = append(errors, GroupValidationError{
				GroupIndex:    -1,
				CriterionName: "Partition",
				Description:   fmt.Sprintf("candidate %s appears %d times", candidate.ID, count),
			})
		}
	}

	for id := range seen {
		if _, ok := byID[id]; !ok {
			errors = append(errors, GroupValidationError{
				GroupIndex:    -1,
				CriterionName: "Partition",
				Description:   fmt.Sprintf("unknown candidate %s in result", id),
			})
		}
	}

	return errors
}

// validateGroupCriteria checks every member against the rest of its group on the hard rules
func validateGroupCriteria(index int, groupID string, members []*CandidateProfile, criteria []Criterion) []GroupValidationError {
	var errors []GroupValidationError

	others := make([]*CandidateProfile, 0, len(members))
	for i, member := range members {
		others = others[:0]
		others = append(others, members[:i]...)
		others = append(others, members[i+1:]...)

		for _, criterion := range criteria {
			if !criterion.IsHard() {
				continue
			}
			if !criterion.IsGroupValid(member, others) {
				errors = append(errors, GroupValidationError{
					GroupIndex:    index,
					GroupID:       groupID,
					CriterionName: criterion.Name(),
					Description:   fmt.Sprintf("member %s violates %s", member.ID, criterion.Name()),
				})
			}
		}
	}

	return errors
}
