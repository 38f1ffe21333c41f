package matcher

// Simulate runs the Group Builder as a dry run and returns aggregate counts.
// The result is never forwarded anywhere and the arguments are never modified.
//
// Pass WithSeed for a reproducible preview. Without it every call uses a fresh seed,
// which is useful for showing the realistic variance of a policy.
func Simulate(candidates []CandidateProfile, policy MatchingPolicy, opts ...Option) (SimulationSummary, error) {
	result, err := BuildGroups(candidates, policy, opts...)
	if err != nil {
		return SimulationSummary{}, err
	}

	return Summarize(result), nil
}

// Summarize reduces a run result to its simulation summary
func Summarize(result *MatchRunResult) SimulationSummary {
	return SimulationSummary{
		EligibleMembers: result.EligibleCount,
		PotentialGroups: result.GroupsFormed,
		WaitlistMembers: len(result.Waitlist),
		Seed:            result.Seed,
	}
}
