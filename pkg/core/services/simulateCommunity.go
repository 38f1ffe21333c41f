package services

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/neighbourly/internal/config"
	"github.com/jakechorley/neighbourly/pkg/core/matcher"
)

// SimulateCommunityRequest selects the pool of a simulation
type SimulateCommunityRequest struct {
	Pool Pool
	Seed *uint64
}

// SimulateCommunity previews a match without persisting anything
func SimulateCommunity(
	ctx context.Context,
	store MatchStore,
	cfg *config.Config,
	logger *zap.Logger,
	req SimulateCommunityRequest,
) (*matcher.SimulationSummary, error) {
	logger.Debug("Starting simulateCommunity",
		zap.String("community_id", req.Pool.CommunityID),
		zap.String("batch_id", req.Pool.BatchID))

	policy, err := loadPolicy(ctx, store, cfg, req.Pool.CommunityID, logger)
	if err != nil {
		return nil, err
	}

	candidates, _, err := loadCandidates(ctx, store, req.Pool, logger)
	if err != nil {
		return nil, err
	}

	summary, err := matcher.Simulate(candidates, policy, runOptions(cfg, req.Pool, req.Seed)...)
	if err != nil {
		return nil, fmt.Errorf("failed to simulate: %w", err)
	}

	logger.Debug("Simulation complete",
		zap.Int("eligible", summary.EligibleMembers),
		zap.Int("groups", summary.PotentialGroups),
		zap.Int("waitlist", summary.WaitlistMembers),
		zap.Uint64("seed", summary.Seed))

	return &summary, nil
}

// VarianceSummary aggregates several unseeded simulations of the same pool
type VarianceSummary struct {
	Runs int

	MinGroups  int
	MaxGroups  int
	MeanGroups float64

	MinWaitlist  int
	MaxWaitlist  int
	MeanWaitlist float64

	// Seeds of every run, so an outlier can be replayed
	Seeds []uint64
}

// PreviewVariance runs the simulator `runs` times with fresh seeds, concurrently, and aggregates the spread
func PreviewVariance(
	ctx context.Context,
	candidates []matcher.CandidateProfile,
	policy matcher.MatchingPolicy,
	opts []matcher.Option,
	runs int,
	logger *zap.Logger,
) (*VarianceSummary, error) {
	if runs < 1 {
		return nil, fmt.Errorf("runs must be at least 1, got %d", runs)
	}

	logger.Debug("Starting variance preview", zap.Int("runs", runs), zap.Int("candidates", len(candidates)))

	summaries := make([]matcher.SimulationSummary, runs)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range runs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			summary, err := matcher.Simulate(candidates, policy, opts...)
			if err != nil {
				return fmt.Errorf("simulation %d failed: %w", i, err)
			}
			summaries[i] = summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return aggregateSummaries(summaries), nil
}

func aggregateSummaries(summaries []matcher.SimulationSummary) *VarianceSummary {
	result := &VarianceSummary{Runs: len(summaries)}
	if len(summaries) == 0 {
		return result
	}

	result.MinGroups = summaries[0].PotentialGroups
	result.MinWaitlist = summaries[0].WaitlistMembers

	totalGroups, totalWaitlist := 0, 0
	for _, s := range summaries {
		result.MinGroups = min(result.MinGroups, s.PotentialGroups)
		result.MaxGroups = max(result.MaxGroups, s.PotentialGroups)
		result.MinWaitlist = min(result.MinWaitlist, s.WaitlistMembers)
		result.MaxWaitlist = max(result.MaxWaitlist, s.WaitlistMembers)
		totalGroups += s.PotentialGroups
		totalWaitlist += s.WaitlistMembers
		result.Seeds = append(result.Seeds, s.Seed)
	}

	result.MeanGroups = float64(totalGroups) / float64(len(summaries))
	result.MeanWaitlist = float64(totalWaitlist) / float64(len(summaries))

	return result
}

// PreviewCommunityVariance loads a pool and runs PreviewVariance over it
func PreviewCommunityVariance(
	ctx context.Context,
	store MatchStore,
	cfg *config.Config,
	logger *zap.Logger,
	pool Pool,
	runs int,
) (*VarianceSummary, error) {
	policy, err := loadPolicy(ctx, store, cfg, pool.CommunityID, logger)
	if err != nil {
		return nil, err
	}

	candidates, _, err := loadCandidates(ctx, store, pool, logger)
	if err != nil {
		return nil, err
	}

	return PreviewVariance(ctx, candidates, policy, runOptions(cfg, pool, nil), runs, logger)
}
