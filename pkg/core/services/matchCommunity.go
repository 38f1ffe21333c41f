package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/neighbourly/internal/config"
	"github.com/jakechorley/neighbourly/pkg/core/matcher"
	"github.com/jakechorley/neighbourly/pkg/db"
	"github.com/jakechorley/neighbourly/pkg/metrics"
)

// MatchCommunityRequest selects the pool and run parameters of a match
type MatchCommunityRequest struct {
	Pool Pool

	// Seed makes the run reproducible; nil draws a fresh seed
	Seed *uint64

	// DryRun builds and validates groups without persisting or notifying
	DryRun bool
}

// MatchCommunityResult contains the outcome of a match
type MatchCommunityResult struct {
	RunID            string
	Status           string
	Result           *matcher.MatchRunResult
	Success          bool
	ValidationErrors []matcher.GroupValidationError
	EmailsSent       int
}

// MatchCommunity builds groups for a community (or an imported batch) and persists the run.
// Automatic policies are committed and their groups introduced immediately.
// Review-required policies are held as pending_review until ApproveRun.
// A run failing validation is never persisted.
func MatchCommunity(
	ctx context.Context,
	store MatchCommunityStore,
	notifier Notifier,
	recorder *metrics.Recorder,
	cfg *config.Config,
	logger *zap.Logger,
	req MatchCommunityRequest,
) (*MatchCommunityResult, error) {
	source := req.Pool.source()
	logger.Debug("Starting matchCommunity",
		zap.String("community_id", req.Pool.CommunityID),
		zap.String("batch_id", req.Pool.BatchID),
		zap.String("source", source),
		zap.Bool("dry_run", req.DryRun))

	policy, err := loadPolicy(ctx, store, cfg, req.Pool.CommunityID, logger)
	if err != nil {
		recorder.RunFailed(source, "policy")
		return nil, err
	}

	candidates, contacts, err := loadCandidates(ctx, store, req.Pool, logger)
	if err != nil {
		recorder.RunFailed(source, "candidates")
		return nil, err
	}

	runID := uuid.New()
	opts := append(runOptions(cfg, req.Pool, req.Seed), matcher.WithRunID(runID))

	start := time.Now()
	result, err := matcher.BuildGroups(candidates, policy, opts...)
	if err != nil {
		recorder.RunFailed(source, "build")
		return nil, fmt.Errorf("failed to build groups: %w", err)
	}
	duration := time.Since(start)

	logger.Info("Built groups",
		zap.Int("eligible", result.EligibleCount),
		zap.Int("groups", result.GroupsFormed),
		zap.Int("waitlist", len(result.Waitlist)),
		zap.Uint64("seed", result.Seed),
		zap.Duration("duration", duration))

	outcome := &MatchCommunityResult{Result: result}

	outcome.ValidationErrors = matcher.ValidateRunResult(result, candidates, policy, opts...)
	if len(outcome.ValidationErrors) > 0 {
		for _, v := range outcome.ValidationErrors {
			logger.Warn("Run validation error",
				zap.String("group_id", v.GroupID),
				zap.String("criterion", v.CriterionName),
				zap.String("description", v.Description))
		}
		recorder.RunFailed(source, "validate")
		return outcome, nil
	}
	outcome.Success = true

	if req.DryRun {
		logger.Info("Dry run, not persisting")
		return outcome, nil
	}

	outcome.Status = db.RunStatusPendingReview
	if result.Mode == matcher.ModeAutomatic {
		outcome.Status = db.RunStatusCommitted
	}

	run, groups := runRecord(runID.String(), result, policy, req.Pool, outcome.Status, time.Now())
	if err := store.InsertMatchRun(ctx, run, groups); err != nil {
		recorder.RunFailed(source, "persist")
		return nil, fmt.Errorf("failed to save match run: %w", err)
	}
	outcome.RunID = run.ID
	logger.Info("Saved match run", zap.String("run_id", run.ID), zap.String("status", outcome.Status))

	recorder.ObserveRun(metrics.RunOutcome{
		CommunityID: req.Pool.CommunityID,
		Source:      source,
		Status:      outcome.Status,
		Duration:    duration,
		Scores:      groupScores(result),
		Waitlist:    len(result.Waitlist),
	})

	if outcome.Status != db.RunStatusCommitted {
		logger.Info("Run held for review", zap.String("run_id", run.ID))
		return outcome, nil
	}

	if notifier == nil {
		logger.Warn("No notifier configured, groups were not introduced", zap.String("run_id", run.ID))
		return outcome, nil
	}

	outcome.EmailsSent, err = notifyGroups(notifier, memberLists(result), contacts, logger)
	recorder.EmailsSent.Add(float64(outcome.EmailsSent))
	if err != nil {
		return outcome, fmt.Errorf("run %s was saved but introductions failed: %w", run.ID, err)
	}

	if err := store.MarkRunIntroduced(ctx, run.ID, time.Now()); err != nil {
		return outcome, err
	}

	return outcome, nil
}

// runRecord converts a builder result into its stored form.
// The run ID must be the one the groups were built under.
func runRecord(runID string, result *matcher.MatchRunResult, policy matcher.MatchingPolicy, pool Pool, status string, now time.Time) (*db.MatchRun, []db.MatchGroup) {
	run := &db.MatchRun{
		ID:             runID,
		CommunityID:    pool.CommunityID,
		BatchID:        pool.BatchID,
		Source:         pool.source(),
		PoolKind:       pool.kind(),
		Mode:           result.Mode,
		Status:         status,
		Seed:           result.Seed,
		EligibleCount:  result.EligibleCount,
		GroupsFormed:   result.GroupsFormed,
		Waitlist:       result.Waitlist,
		CreatedAt:      now,
		PolicySnapshot: policy.Clone(),
	}

	groups := make([]db.MatchGroup, len(result.Groups))
	for i, group := range result.Groups {
		groups[i] = db.MatchGroup{
			ID:                 group.ID,
			RunID:              run.ID,
			Position:           i,
			CompatibilityScore: group.CompatibilityScore,
			Members:            group.Members,
		}
	}

	return run, groups
}

func memberLists(result *matcher.MatchRunResult) [][]string {
	lists := make([][]string, len(result.Groups))
	for i, group := range result.Groups {
		lists[i] = group.Members
	}
	return lists
}

func groupScores(result *matcher.MatchRunResult) []float64 {
	scores := make([]float64, len(result.Groups))
	for i, group := range result.Groups {
		scores[i] = group.CompatibilityScore
	}
	return scores
}
