package matcher

import "slices"

// Resolution is the outcome of applying a fallback strategy to an incomplete group
type Resolution struct {
	// Group is the resolved group, or nil if the group was disbanded
	Group []CandidateProfile

	// Consumed lists candidates pulled from the pool while resolving
	Consumed []CandidateProfile

	// Relaxed is the dimension ignored by autoRelax ("" when nothing was relaxed)
	Relaxed DimensionKey
}

// resolution is the builder-internal form of Resolution
type resolution struct {
	group    []*CandidateProfile
	consumed []*CandidateProfile
	relaxed  DimensionKey
	keep     bool

	// criteria the group was grown under, nil when unchanged
	criteria []Criterion
}

// Resolve applies the policy's fallback strategy to a group that is below its target size.
//
//   - fillPartial: the group is kept as-is if it has at least the minimum size
//   - autoRelax: the lowest-weighted soft dimension is ignored and the group is grown once more
//     from the pool; if still short it is treated as fillPartial
//   - waitlist: the group is disbanded
//
// Neither the group nor the pool passed in is modified.
func Resolve(group, pool []CandidateProfile, policy MatchingPolicy, opts ...Option) (Resolution, error) {
	options := resolveOptions(opts)
	if err := policy.Validate(); err != nil {
		return Resolution{}, err
	}

	groupCopy := slices.Clone(group)
	poolCopy := slices.Clone(pool)
	members := make([]*CandidateProfile, len(groupCopy))
	for i := range groupCopy {
		members[i] = &groupCopy[i]
	}
	remaining := make([]*CandidateProfile, len(poolCopy))
	for i := range poolCopy {
		remaining[i] = &poolCopy[i]
	}

	builder := newBuilder(&policy, options)
	res := builder.resolve(members, remaining)

	out := Resolution{
		Consumed: dereference(res.consumed),
		Relaxed:  res.relaxed,
	}
	if res.keep && len(res.group) >= builder.minSize {
		out.Group = dereference(res.group)
	}

	return out, nil
}

// resolve applies the fallback strategy inside a run. The pool is not modified;
// consumed candidates must be removed by the caller.
func (b *Builder) resolve(group, pool []*CandidateProfile) resolution {
	switch b.policy.FallbackStrategy {
	case FallbackWaitlist:
		return resolution{group: group, keep: false}

	case FallbackAutoRelax:
		key, ok := b.policy.LowestWeightSoftDimension()
		if !ok {
			return b.fillPartial(group)
		}

		relaxedPolicy := b.policy.WithWeight(key, 0)
		relaxedCriteria := CriteriaForPolicy(&relaxedPolicy, b.thresholds)

		before := len(group)
		grown, _ := b.grow(slices.Clone(group), slices.Clone(pool), relaxedCriteria)

		res := b.fillPartial(grown)
		res.consumed = grown[before:]
		res.relaxed = key
		res.criteria = relaxedCriteria
		return res

	default:
		return b.fillPartial(group)
	}
}

// fillPartial keeps the group as long as it reaches the minimum size
func (b *Builder) fillPartial(group []*CandidateProfile) resolution {
	return resolution{
		group: group,
		keep:  len(group) >= b.minSize,
	}
}

func dereference(profiles []*CandidateProfile) []CandidateProfile {
	if len(profiles) == 0 {
		return nil
	}
	result := make([]CandidateProfile, len(profiles))
	for i, profile := range profiles {
		result[i] = *profile
	}
	return result
}
