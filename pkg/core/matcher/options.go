package matcher

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// Option customizes a Group Builder or Simulator run
type Option func(*runOptions)

type runOptions struct {
	seed       uint64
	seeded     bool
	thresholds Thresholds
	poolKind   PoolKind

	// runID scopes group IDs; zero means they are derived from the seed
	runID uuid.UUID
}

// WithSeed makes the shuffle reproducible
func WithSeed(seed uint64) Option {
	return func(o *runOptions) {
		o.seed = seed
		o.seeded = true
	}
}

// WithThresholds replaces DefaultThresholds for the run
func WithThresholds(thresholds Thresholds) Option {
	return func(o *runOptions) {
		o.thresholds = thresholds
	}
}

// WithPoolKind selects the policy target size (defaults to PoolIndividuals)
func WithPoolKind(kind PoolKind) Option {
	return func(o *runOptions) {
		o.poolKind = kind
	}
}

// WithRunID scopes the IDs of the formed groups to a persisted run.
// Without it, group IDs depend only on the seed and repeat across runs sharing one.
func WithRunID(runID uuid.UUID) Option {
	return func(o *runOptions) {
		o.runID = runID
	}
}

func resolveOptions(opts []Option) runOptions {
	o := runOptions{
		thresholds: DefaultThresholds,
		poolKind:   PoolIndividuals,
	}
	for _, opt := range opts {
		opt(&o)
	}

	// Unseeded runs still record the seed they used
	if !o.seeded {
		o.seed = rand.Uint64()
	}

	if o.runID == uuid.Nil {
		o.runID = SeedRunID(o.seed)
	}

	return o
}

// newShuffler returns a deterministic generator for the given seed
func newShuffler(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
