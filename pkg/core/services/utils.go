package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/neighbourly/internal/config"
	"github.com/jakechorley/neighbourly/pkg/core/matcher"
	"github.com/jakechorley/neighbourly/pkg/db"
)

// ErrNoPolicy is returned when a community has no stored policy and no default template is configured
var ErrNoPolicy = errors.New("community has no matching policy")

// Pool selects the candidates of one run
type Pool struct {
	CommunityID string

	// BatchID selects an imported batch instead of the community's own profiles
	BatchID string

	Kind matcher.PoolKind
}

func (p Pool) source() string {
	if p.BatchID != "" {
		return db.SourceExternal
	}
	return db.SourceNative
}

func (p Pool) kind() matcher.PoolKind {
	if p.Kind == "" {
		return matcher.PoolIndividuals
	}
	return p.Kind
}

// loadPolicy returns the stored policy of a community, falling back to the configured default template
func loadPolicy(ctx context.Context, store db.PolicyStore, cfg *config.Config, communityID string, logger *zap.Logger) (matcher.MatchingPolicy, error) {
	record, err := store.GetPolicy(ctx, communityID)
	if err == nil {
		logger.Debug("Loaded community policy",
			zap.String("community_id", communityID),
			zap.String("template", record.Template),
			zap.Time("updated_at", record.UpdatedAt))
		return record.Policy, nil
	}

	if !errors.Is(err, db.ErrNotFound) {
		return matcher.MatchingPolicy{}, fmt.Errorf("failed to fetch policy: %w", err)
	}

	if cfg.Matching.DefaultTemplate == "" {
		return matcher.MatchingPolicy{}, fmt.Errorf("%w: %s", ErrNoPolicy, communityID)
	}

	logger.Debug("No stored policy, using default template",
		zap.String("community_id", communityID),
		zap.String("template", cfg.Matching.DefaultTemplate))

	return matcher.PolicyFromTemplate(cfg.Matching.DefaultTemplate)
}

// loadCandidates returns the candidates of a pool and how to reach them
func loadCandidates(ctx context.Context, store db.ProfileStore, pool Pool, logger *zap.Logger) ([]matcher.CandidateProfile, map[string]db.Contact, error) {
	if pool.BatchID != "" {
		profiles, err := store.GetExternalProfiles(ctx, pool.BatchID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch external profiles: %w", err)
		}
		candidates, contacts := db.CandidatesFromExternal(profiles)
		logger.Debug("Loaded external candidates",
			zap.String("batch_id", pool.BatchID),
			zap.Int("count", len(candidates)))
		return candidates, contacts, nil
	}

	profiles, err := store.GetCommunityProfiles(ctx, pool.CommunityID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}
	candidates, contacts := db.CandidatesFromProfiles(profiles, pool.kind())
	logger.Debug("Loaded community candidates",
		zap.String("community_id", pool.CommunityID),
		zap.String("pool_kind", string(pool.kind())),
		zap.Int("profiles", len(profiles)),
		zap.Int("candidates", len(candidates)))
	return candidates, contacts, nil
}

// contactsForRun reloads the contacts of the pool a stored run was built from
func contactsForRun(ctx context.Context, store db.ProfileStore, run *db.MatchRun, logger *zap.Logger) (map[string]db.Contact, error) {
	pool := Pool{CommunityID: run.CommunityID, BatchID: run.BatchID, Kind: run.PoolKind}
	_, contacts, err := loadCandidates(ctx, store, pool, logger)
	return contacts, err
}

// notifyGroups introduces the members of every group to each other and returns the number of emails sent.
// Members who left the pool since the run was formed are skipped.
func notifyGroups(notifier Notifier, groups [][]string, contacts map[string]db.Contact, logger *zap.Logger) (int, error) {
	sent := 0
	for i, members := range groups {
		var groupContacts []db.Contact
		for _, id := range members {
			contact, ok := contacts[id]
			if !ok {
				logger.Warn("No contact for group member", zap.Int("group", i), zap.String("candidate_id", id))
				continue
			}
			groupContacts = append(groupContacts, contact)
		}

		n, err := notifier.SendGroupIntroduction(groupContacts)
		sent += n
		if err != nil {
			return sent, fmt.Errorf("failed to notify group %d: %w", i, err)
		}
		logger.Debug("Introduced group", zap.Int("group", i), zap.Int("emails", n))
	}
	return sent, nil
}

// runOptions returns the matcher options for a pool
func runOptions(cfg *config.Config, pool Pool, seed *uint64) []matcher.Option {
	opts := []matcher.Option{
		matcher.WithThresholds(cfg.Matching.Thresholds),
		matcher.WithPoolKind(pool.kind()),
	}
	if seed != nil {
		opts = append(opts, matcher.WithSeed(*seed))
	}
	return opts
}
