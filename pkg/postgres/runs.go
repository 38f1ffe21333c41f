package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/neighbourly/pkg/core/matcher"
	"github.com/jakechorley/neighbourly/pkg/db"
)

// Seeds are unsigned but BIGINT is signed; the bit pattern is stored unchanged
func seedToColumn(seed uint64) int64 {
	return int64(seed)
}

func seedFromColumn(value int64) uint64 {
	return uint64(value)
}

// InsertMatchRun inserts a run together with its groups and members in one transaction
func (d *DB) InsertMatchRun(ctx context.Context, run *db.MatchRun, groups []db.MatchGroup) error {
	snapshot, err := encodePolicy(run.PolicySnapshot)
	if err != nil {
		return err
	}

	waitlist := run.Waitlist
	if waitlist == nil {
		waitlist = []string{}
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO match_run (id, community_id, batch_id, source, pool_kind, mode, status, seed,
			eligible_count, groups_formed, waitlist, policy_snapshot, created_at, approved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, run.ID, run.CommunityID, nullable(run.BatchID), run.Source, string(run.PoolKind), string(run.Mode),
		run.Status, seedToColumn(run.Seed), run.EligibleCount, run.GroupsFormed, waitlist, snapshot,
		run.CreatedAt.UTC(), run.ApprovedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match run: %w", err)
	}

	for _, group := range groups {
		_, err := tx.Exec(ctx, `
			INSERT INTO match_group (id, run_id, position, compatibility_score)
			VALUES ($1, $2, $3, $4)
		`, group.ID, run.ID, group.Position, group.CompatibilityScore)
		if err != nil {
			return fmt.Errorf("failed to insert match group %s: %w", group.ID, err)
		}

		for position, candidateID := range group.Members {
			_, err := tx.Exec(ctx, `
				INSERT INTO match_group_member (group_id, candidate_id, position)
				VALUES ($1, $2, $3)
			`, group.ID, candidateID, position)
			if err != nil {
				return fmt.Errorf("failed to insert member %s of group %s: %w", candidateID, group.ID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetMatchRun retrieves a run and its groups (in position order), or db.ErrNotFound
func (d *DB) GetMatchRun(ctx context.Context, runID string) (*db.MatchRun, []db.MatchGroup, error) {
	var run db.MatchRun
	var batchID *string
	var poolKind, mode string
	var seed int64
	var snapshot []byte

	err := d.pool.QueryRow(ctx, `
		SELECT id::text, community_id, batch_id, source, pool_kind, mode, status, seed, eligible_count,
			groups_formed, waitlist, policy_snapshot, created_at, approved_at, introduced_at
		FROM match_run
		WHERE id = $1
	`, runID).Scan(&run.ID, &run.CommunityID, &batchID, &run.Source, &poolKind, &mode, &run.Status,
		&seed, &run.EligibleCount, &run.GroupsFormed, &run.Waitlist, &snapshot, &run.CreatedAt, &run.ApprovedAt, &run.IntroducedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("match run %s: %w", runID, db.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query match run: %w", err)
	}

	run.BatchID = deref(batchID)
	run.PoolKind = matcher.PoolKind(poolKind)
	run.Mode = matcher.PolicyMode(mode)
	run.Seed = seedFromColumn(seed)
	run.PolicySnapshot, err = decodePolicy(snapshot)
	if err != nil {
		return nil, nil, err
	}

	groups, err := d.getMatchGroups(ctx, runID)
	if err != nil {
		return nil, nil, err
	}

	return &run, groups, nil
}

func (d *DB) getMatchGroups(ctx context.Context, runID string) ([]db.MatchGroup, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT g.id::text, g.position, g.compatibility_score, m.candidate_id
		FROM match_group g
		JOIN match_group_member m ON m.group_id = g.id
		WHERE g.run_id = $1
		ORDER BY g.position, m.position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query match groups: %w", err)
	}
	defer rows.Close()

	var groups []db.MatchGroup
	for rows.Next() {
		var groupID, candidateID string
		var position int
		var score float64
		if err := rows.Scan(&groupID, &position, &score, &candidateID); err != nil {
			return nil, fmt.Errorf("failed to scan match group member: %w", err)
		}

		if len(groups) == 0 || groups[len(groups)-1].ID != groupID {
			groups = append(groups, db.MatchGroup{
				ID:                 groupID,
				RunID:              runID,
				Position:           position,
				CompatibilityScore: score,
			})
		}
		last := &groups[len(groups)-1]
		last.Members = append(last.Members, candidateID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match groups: %w", err)
	}

	return groups, nil
}

// ApproveMatchRun approves a run still pending review. The status check and the
// update are one statement, so of two concurrent approvals only one succeeds.
func (d *DB) ApproveMatchRun(ctx context.Context, runID string, at time.Time) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE match_run SET status = $2, approved_at = $3 WHERE id = $1 AND status = $4
	`, runID, db.RunStatusApproved, at.UTC(), db.RunStatusPendingReview)
	if err != nil {
		return fmt.Errorf("failed to approve match run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return d.missingOrNotPending(ctx, runID)
	}
	return nil
}

// MarkRunIntroduced records when the groups of a run were introduced. A run already marked keeps its first time.
func (d *DB) MarkRunIntroduced(ctx context.Context, runID string, at time.Time) error {
	_, err := d.pool.Exec(ctx, `
		UPDATE match_run SET introduced_at = COALESCE(introduced_at, $2) WHERE id = $1
	`, runID, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to mark match run introduced: %w", err)
	}
	return nil
}

func (d *DB) missingOrNotPending(ctx context.Context, runID string) error {
	var status string
	err := d.pool.QueryRow(ctx, `SELECT status FROM match_run WHERE id = $1`, runID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("match run %s: %w", runID, db.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to query match run status: %w", err)
	}
	return fmt.Errorf("%w: %s is %s", db.ErrRunNotPending, runID, status)
}
