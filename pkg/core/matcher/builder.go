package matcher

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/google/uuid"
)

// ErrDuplicateCandidate is returned when two candidates share an ID
var ErrDuplicateCandidate = errors.New("duplicate candidate id")

// seedRunNamespace derives a run ID from the seed of an unpersisted run
var seedRunNamespace = uuid.MustParse("6f1c2a8e-3d4b-5e6f-8a9b-0c1d2e3f4a5b")

// Builder manages the group formation process for one run
type Builder struct {
	policy     *MatchingPolicy
	criteria   []Criterion
	thresholds Thresholds
	target     int
	minSize    int
	runID      uuid.UUID

	// disbandCount tracks how many times each candidate's group has been disbanded
	disbandCount map[*CandidateProfile]int
}

// BuildGroups partitions the candidates into groups using greedy seeded growth.
//
// Candidates are shuffled with a seeded generator, then each remaining candidate in turn seeds
// a group that grows by repeatedly adding the best-scoring unplaced candidate. Groups that
// cannot reach the target size are handed to the policy's fallback strategy, and groups still
// below the minimum size are disbanded. Leftovers end on the waitlist.
//
// Growing a group rescores every unplaced candidate for each added member, so one growth round
// is O(n²) in the pool size.
//
// The candidates slice and the policy are never modified.
func BuildGroups(candidates []CandidateProfile, policy MatchingPolicy, opts ...Option) (*MatchRunResult, error) {
	options := resolveOptions(opts)

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if err := options.thresholds.Validate(); err != nil {
		return nil, err
	}

	// Work on private copies so the caller's data is never touched
	profiles := slices.Clone(candidates)
	seen := make(map[string]bool, len(profiles))
	pool := make([]*CandidateProfile, len(profiles))
	for i := range profiles {
		if seen[profiles[i].ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCandidate, profiles[i].ID)
		}
		seen[profiles[i].ID] = true
		pool[i] = &profiles[i]
	}

	snapshot := policy.Clone()
	builder := newBuilder(&snapshot, options)

	// Shuffle to avoid systematic bias toward list order
	shuffler := newShuffler(options.seed)
	shuffler.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	groups, waitlist := builder.run(pool)

	return builder.buildResult(groups, waitlist, len(candidates), options.seed), nil
}

func newBuilder(policy *MatchingPolicy, options runOptions) *Builder {
	return &Builder{
		policy:       policy,
		criteria:     CriteriaForPolicy(policy, options.thresholds),
		thresholds:   options.thresholds,
		target:       policy.TargetSize(options.poolKind),
		minSize:      policy.EffectiveMinGroupSize(options.poolKind, options.thresholds),
		runID:        options.runID,
		disbandCount: make(map[*CandidateProfile]int),
	}
}

// formedGroup is a kept group and the criteria it was grown under
type formedGroup struct {
	members  []*CandidateProfile
	criteria []Criterion
}

// run executes the main formation loop over a shuffled pool
func (b *Builder) run(pool []*CandidateProfile) ([]formedGroup, []*CandidateProfile) {
	var groups []formedGroup
	var waitlist []*CandidateProfile

	// Candidates failing a hard filter on their own can never be placed
	eligible := make([]*CandidateProfile, 0, len(pool))
	for _, candidate := range pool {
		if b.isEligible(candidate) {
			eligible = append(eligible, candidate)
		} else {
			waitlist = append(waitlist, candidate)
		}
	}
	pool = eligible

	// Main formation loop
	for len(pool) >= b.minSize {
		// Pop first candidate as the seed
		seed := pool[0]
		pool = pool[1:]

		group := []*CandidateProfile{seed}
		group, pool = b.grow(group, pool, b.criteria)

		keep := true
		criteria := b.criteria
		if len(group) < b.target {
			resolution := b.resolve(group, pool)
			group, keep = resolution.group, resolution.keep
			pool = removeCandidates(pool, resolution.consumed)
			if resolution.criteria != nil {
				criteria = resolution.criteria
			}
		}

		// Disbanded by the fallback or too small even after it - return members to the pool
		if !keep || len(group) < b.minSize {
			var exhausted []*CandidateProfile
			pool, exhausted = b.disband(group, pool)
			waitlist = append(waitlist, exhausted...)
			continue
		}

		groups = append(groups, formedGroup{members: group, criteria: criteria})
	}

	// Fewer than minSize candidates left
	waitlist = append(waitlist, pool...)

	return groups, waitlist
}

// grow adds the best-scoring candidate from the pool until the group reaches the target size
// or nobody scores above the acceptance threshold. Ties go to the earliest candidate in the pool.
func (b *Builder) grow(group, pool []*CandidateProfile, criteria []Criterion) ([]*CandidateProfile, []*CandidateProfile) {
	for len(group) < b.target && len(pool) > 0 {
		bestIdx := -1
		bestScore := 0.0

		for i, candidate := range pool {
			score := CalculateGroupAffinity(candidate, group, criteria)
			if bestIdx < 0 || score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}

		if bestScore <= b.thresholds.MinAcceptanceScore {
			break
		}

		group = append(group, pool[bestIdx])
		pool = slices.Delete(pool, bestIdx, bestIdx+1)
	}

	return group, pool
}

// disband returns the group's members to the back of the pool.
// Members disbanded a second time are returned separately for the waitlist.
func (b *Builder) disband(group, pool []*CandidateProfile) ([]*CandidateProfile, []*CandidateProfile) {
	var exhausted []*CandidateProfile

	for _, member := range group {
		b.disbandCount[member]++
		if b.disbandCount[member] > 1 {
			exhausted = append(exhausted, member)
			continue
		}
		pool = append(pool, member)
	}

	return pool, exhausted
}

func (b *Builder) isEligible(candidate *CandidateProfile) bool {
	for _, criterion := range b.criteria {
		if !criterion.IsCandidateEligible(candidate) {
			return false
		}
	}
	return true
}

// groupScore is the mean score of each member against the rest of the group
func groupScore(group []*CandidateProfile, criteria []Criterion) float64 {
	if len(group) < 2 {
		return 1.0
	}

	total := 0.0
	others := make([]*CandidateProfile, 0, len(group)-1)
	for i, member := range group {
		others = others[:0]
		others = append(others, group[:i]...)
		others = append(others, group[i+1:]...)
		total += CalculateGroupAffinity(member, others, criteria)
	}

	return total / float64(len(group))
}

// buildResult creates the immutable run result
func (b *Builder) buildResult(groups []formedGroup, waitlist []*CandidateProfile, eligibleCount int, seed uint64) *MatchRunResult {
	// Initialize with empty slices (not nil) for easier consumption
	result := &MatchRunResult{
		Groups:        make([]MatchGroup, 0, len(groups)),
		Waitlist:      make([]string, 0, len(waitlist)),
		EligibleCount: eligibleCount,
		Mode:          b.policy.Mode,
		Seed:          seed,
	}

	for i, group := range groups {
		members := make([]string, len(group.members))
		for j, member := range group.members {
			members[j] = member.ID
		}

		result.Groups = append(result.Groups, MatchGroup{
			ID:                   GroupID(b.runID, i),
			Members:              members,
			CompatibilityScore:   groupScore(group.members, group.criteria),
			SourcePolicySnapshot: b.policy.Clone(),
		})
	}

	for _, candidate := range waitlist {
		result.Waitlist = append(result.Waitlist, candidate.ID)
	}

	result.GroupsFormed = len(result.Groups)

	return result
}

// GroupID derives the ID of the group at the given position of a run
func GroupID(runID uuid.UUID, index int) string {
	return uuid.NewSHA1(runID, []byte(strconv.Itoa(index))).String()
}

// SeedRunID is the run ID used for group IDs when a run is not given one with WithRunID
func SeedRunID(seed uint64) uuid.UUID {
	return uuid.NewSHA1(seedRunNamespace, strconv.AppendUint(nil, seed, 10))
}

// removeCandidates returns pool without the given candidates, preserving order
func removeCandidates(pool, remove []*CandidateProfile) []*CandidateProfile {
	if len(remove) == 0 {
		return pool
	}
	return slices.DeleteFunc(pool, func(candidate *CandidateProfile) bool {
		return slices.Contains(remove, candidate)
	})
}
