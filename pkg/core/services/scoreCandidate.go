package services

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/jakechorley/neighbourly/internal/config"
	"github.com/jakechorley/neighbourly/pkg/core/matcher"
)

// ScoreCandidateResult is the score of one candidate against a proposed group
type ScoreCandidateResult struct {
	CandidateID string
	MemberIDs   []string
	Score       float64
}

// ScoreCandidate scores one candidate of a pool against other members of the same pool
func ScoreCandidate(
	ctx context.Context,
	store MatchStore,
	cfg *config.Config,
	logger *zap.Logger,
	pool Pool,
	candidateID string,
	memberIDs []string,
) (*ScoreCandidateResult, error) {
	policy, err := loadPolicy(ctx, store, cfg, pool.CommunityID, logger)
	if err != nil {
		return nil, err
	}

	candidates, _, err := loadCandidates(ctx, store, pool, logger)
	if err != nil {
		return nil, err
	}

	find := func(id string) (matcher.CandidateProfile, error) {
		idx := slices.IndexFunc(candidates, func(c matcher.CandidateProfile) bool { return c.ID == id })
		if idx < 0 {
			return matcher.CandidateProfile{}, fmt.Errorf("candidate %s is not in the pool", id)
		}
		return candidates[idx], nil
	}

	candidate, err := find(candidateID)
	if err != nil {
		return nil, err
	}

	group := make([]matcher.CandidateProfile, 0, len(memberIDs))
	for _, id := range memberIDs {
		member, err := find(id)
		if err != nil {
			return nil, err
		}
		group = append(group, member)
	}

	score := matcher.ScoreCandidateWithThresholds(candidate, group, policy, cfg.Matching.Thresholds)
	logger.Debug("Scored candidate",
		zap.String("candidate_id", candidateID),
		zap.Strings("members", memberIDs),
		zap.Float64("score", score))

	return &ScoreCandidateResult{CandidateID: candidateID, MemberIDs: memberIDs, Score: score}, nil
}
