package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/neighbourly/pkg/core/matcher"
	"github.com/jakechorley/neighbourly/pkg/db"
)

func encodePolicy(policy matcher.MatchingPolicy) ([]byte, error) {
	data, err := json.Marshal(policy)
	if err != nil {
		return nil, fmt.Errorf("failed to encode policy: %w", err)
	}
	return data, nil
}

func decodePolicy(data []byte) (matcher.MatchingPolicy, error) {
	var policy matcher.MatchingPolicy
	if err := json.Unmarshal(data, &policy); err != nil {
		return matcher.MatchingPolicy{}, fmt.Errorf("failed to decode policy: %w", err)
	}
	return policy, nil
}

// GetPolicy retrieves the policy of a community, or db.ErrNotFound
func (d *DB) GetPolicy(ctx context.Context, communityID string) (*db.CommunityPolicy, error) {
	var record db.CommunityPolicy
	var template *string
	var raw []byte

	err := d.pool.QueryRow(ctx, `
		SELECT community_id, template, policy, updated_at
		FROM community_policy
		WHERE community_id = $1
	`, communityID).Scan(&record.CommunityID, &template, &raw, &record.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("policy for community %s: %w", communityID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query policy: %w", err)
	}

	if template != nil {
		record.Template = *template
	}

	record.Policy, err = decodePolicy(raw)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// SavePolicy inserts or replaces the policy of a community
func (d *DB) SavePolicy(ctx context.Context, policy *db.CommunityPolicy) error {
	raw, err := encodePolicy(policy.Policy)
	if err != nil {
		return err
	}

	var template *string
	if policy.Template != "" {
		template = &policy.Template
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO community_policy (community_id, template, policy, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (community_id) DO UPDATE
		SET template = EXCLUDED.template, policy = EXCLUDED.policy, updated_at = EXCLUDED.updated_at
	`, policy.CommunityID, template, raw, policy.UpdatedAt.UTC().Truncate(time.Microsecond))
	if err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}
	return nil
}
