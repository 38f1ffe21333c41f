package e2e

import (
	"github.com/jakechorley/neighbourly/pkg/core/matcher"
)

// Type aliases to avoid prefixing everything with matcher.
type (
	CandidateProfile  = matcher.CandidateProfile
	MatchingPolicy    = matcher.MatchingPolicy
	MatchRunResult    = matcher.MatchRunResult
	DimensionRule     = matcher.DimensionRule
	LocationRule      = matcher.LocationRule
	FallbackStrategy  = matcher.FallbackStrategy
	SimulationSummary = matcher.SimulationSummary
)

// Function aliases
var (
	BuildGroups        = matcher.BuildGroups
	Simulate           = matcher.Simulate
	ScoreCandidate     = matcher.ScoreCandidate
	ValidateRunResult  = matcher.ValidateRunResult
	PolicyFromTemplate = matcher.PolicyFromTemplate
	TemplateNames      = matcher.TemplateNames
	WithSeed           = matcher.WithSeed
	WithPoolKind       = matcher.WithPoolKind
)
