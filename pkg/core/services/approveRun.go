package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/neighbourly/pkg/db"
	"github.com/jakechorley/neighbourly/pkg/metrics"
)

// ErrRunNotPending is returned when approving a run that is not awaiting review
var ErrRunNotPending = db.ErrRunNotPending

// ApproveRunResult contains the outcome of an approval
type ApproveRunResult struct {
	Run        *db.MatchRun
	Groups     []db.MatchGroup
	EmailsSent int
}

// ApproveRun approves a run held for review and introduces its groups.
// A run that was approved or committed but never introduced is introduced again without changing its status.
func ApproveRun(
	ctx context.Context,
	store ApproveRunStore,
	notifier Notifier,
	recorder *metrics.Recorder,
	logger *zap.Logger,
	runID string,
	now time.Time,
) (*ApproveRunResult, error) {
	logger.Debug("Starting approveRun", zap.String("run_id", runID))

	run, groups, err := store.GetMatchRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match run: %w", err)
	}

	retry := run.Status != db.RunStatusPendingReview
	if retry && run.IntroducedAt != nil {
		return nil, fmt.Errorf("%w: %s is %s", ErrRunNotPending, runID, run.Status)
	}

	contacts, err := contactsForRun(ctx, store, run, logger)
	if err != nil {
		return nil, err
	}

	if retry {
		logger.Info("Retrying introductions", zap.String("run_id", runID), zap.String("status", run.Status))
	} else {
		if err := store.ApproveMatchRun(ctx, runID, now); err != nil {
			return nil, fmt.Errorf("failed to approve match run: %w", err)
		}
		approvedAt := now.UTC()
		run.Status = db.RunStatusApproved
		run.ApprovedAt = &approvedAt
		logger.Info("Approved match run", zap.String("run_id", runID), zap.Int("groups", len(groups)))
	}

	result := &ApproveRunResult{Run: run, Groups: groups}

	if notifier == nil {
		logger.Warn("No notifier configured, groups were not introduced", zap.String("run_id", runID))
		return result, nil
	}

	lists := make([][]string, len(groups))
	for i, group := range groups {
		lists[i] = group.Members
	}

	result.EmailsSent, err = notifyGroups(notifier, lists, contacts, logger)
	recorder.EmailsSent.Add(float64(result.EmailsSent))
	if err != nil {
		return result, fmt.Errorf("run %s was approved but introductions failed: %w", runID, err)
	}

	if err := store.MarkRunIntroduced(ctx, runID, now); err != nil {
		return result, err
	}
	introducedAt := now.UTC()
	run.IntroducedAt = &introducedAt

	return result, nil
}
