package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/neighbourly/internal/config"
	"github.com/jakechorley/neighbourly/pkg/db"
)

// ImportExternalProfilesResult contains the outcome of an import
type ImportExternalProfilesResult struct {
	BatchID  string
	Imported int
}

// ImportExternalProfiles reads one batch from the imports sheet and stores it.
// Re-importing a batch updates the rows already stored under the same reference.
func ImportExternalProfiles(
	ctx context.Context,
	source ExternalProfileSource,
	store db.ProfileStore,
	cfg *config.Config,
	logger *zap.Logger,
	batchID string,
	now time.Time,
) (*ImportExternalProfilesResult, error) {
	logger.Debug("Starting importExternalProfiles", zap.String("batch_id", batchID))

	if batchID == "" {
		return nil, fmt.Errorf("batch id is required")
	}

	profiles, err := source.ListExternalProfiles(cfg, batchID, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to read external profiles: %w", err)
	}
	logger.Debug("Read external profiles", zap.Int("count", len(profiles)))

	if len(profiles) == 0 {
		return nil, fmt.Errorf("no rows found for batch %s", batchID)
	}

	if err := store.InsertExternalProfiles(ctx, profiles); err != nil {
		return nil, fmt.Errorf("failed to save external profiles: %w", err)
	}

	logger.Info("Imported external profiles", zap.String("batch_id", batchID), zap.Int("count", len(profiles)))

	return &ImportExternalProfilesResult{BatchID: batchID, Imported: len(profiles)}, nil
}
