package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/neighbourly/pkg/db"
)

func deref[T any](value *T) T {
	var zero T
	if value == nil {
		return zero
	}
	return *value
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// GetCommunityProfiles retrieves every profile of a community, ordered by id
func (d *DB) GetCommunityProfiles(ctx context.Context, communityID string) ([]db.Profile, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, community_id, display_name, email, age_group, life_stage, family_stage, gender,
			season_interest, city, region, latitude, longitude, neighborhood_id, group_size_preference,
			household_type, active
		FROM profile
		WHERE community_id = $1
		ORDER BY id
	`, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []db.Profile
	for rows.Next() {
		var p db.Profile
		var email, ageGroup, lifeStage, familyStage, gender, season, city, region, neighborhood *string
		if err := rows.Scan(&p.ID, &p.CommunityID, &p.DisplayName, &email, &ageGroup, &lifeStage,
			&familyStage, &gender, &season, &city, &region, &p.Latitude, &p.Longitude, &neighborhood,
			&p.GroupSizePreference, &p.HouseholdType, &p.Active); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		p.Email = deref(email)
		p.AgeGroup = deref(ageGroup)
		p.LifeStage = deref(lifeStage)
		p.FamilyStage = deref(familyStage)
		p.Gender = deref(gender)
		p.SeasonInterest = deref(season)
		p.City = deref(city)
		p.Region = deref(region)
		p.NeighborhoodID = deref(neighborhood)
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return profiles, nil
}

// GetExternalProfiles retrieves every imported profile of a batch, ordered by id
func (d *DB) GetExternalProfiles(ctx context.Context, batchID string) ([]db.ExternalProfile, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, batch_id, external_ref, display_name, email, age_group, life_stage, family_stage,
			gender, season_interest, city, region, latitude, longitude, group_size_preference, imported_at
		FROM external_profile
		WHERE batch_id = $1
		ORDER BY id
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query external profiles: %w", err)
	}
	defer rows.Close()

	var profiles []db.ExternalProfile
	for rows.Next() {
		var p db.ExternalProfile
		var email, ageGroup, lifeStage, familyStage, gender, season, city, region *string
		if err := rows.Scan(&p.ID, &p.BatchID, &p.ExternalRef, &p.DisplayName, &email, &ageGroup,
			&lifeStage, &familyStage, &gender, &season, &city, &region, &p.Latitude, &p.Longitude,
			&p.GroupSizePreference, &p.ImportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan external profile: %w", err)
		}
		p.Email = deref(email)
		p.AgeGroup = deref(ageGroup)
		p.LifeStage = deref(lifeStage)
		p.FamilyStage = deref(familyStage)
		p.Gender = deref(gender)
		p.SeasonInterest = deref(season)
		p.City = deref(city)
		p.Region = deref(region)
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating external profiles: %w", err)
	}

	return profiles, nil
}

// InsertExternalProfiles inserts imported profiles, replacing rows re-imported under the same reference
func (d *DB) InsertExternalProfiles(ctx context.Context, profiles []db.ExternalProfile) error {
	if len(profiles) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range profiles {
		_, err := tx.Exec(ctx, `
			INSERT INTO external_profile (id, batch_id, external_ref, display_name, email, age_group,
				life_stage, family_stage, gender, season_interest, city, region, latitude, longitude,
				group_size_preference, imported_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (batch_id, external_ref) DO UPDATE
			SET display_name = EXCLUDED.display_name, email = EXCLUDED.email,
				age_group = EXCLUDED.age_group, life_stage = EXCLUDED.life_stage,
				family_stage = EXCLUDED.family_stage, gender = EXCLUDED.gender,
				season_interest = EXCLUDED.season_interest, city = EXCLUDED.city,
				region = EXCLUDED.region, latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
				group_size_preference = EXCLUDED.group_size_preference, imported_at = EXCLUDED.imported_at
		`, p.ID, p.BatchID, p.ExternalRef, p.DisplayName, nullable(p.Email), nullable(p.AgeGroup),
			nullable(p.LifeStage), nullable(p.FamilyStage), nullable(p.Gender), nullable(p.SeasonInterest),
			nullable(p.City), nullable(p.Region), p.Latitude, p.Longitude, p.GroupSizePreference,
			p.ImportedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert external profile %s: %w", p.ExternalRef, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
