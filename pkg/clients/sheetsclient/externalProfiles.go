package sheetsclient

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/neighbourly/internal/config"
	"github.com/jakechorley/neighbourly/pkg/db"
)

// externalProfileNamespace scopes the ids derived for imported rows
var externalProfileNamespace = uuid.MustParse("0b6f2d1e-7c4a-5f38-9e21-4d7a8c3b5e60")

// Column names in the imports sheet. Only the required ones must be present in the header.
const (
	colBatch       = "Batch"
	colExternalID  = "External ID"
	colName        = "Name"
	colEmail       = "Email"
	colAgeGroup    = "Age group"
	colLifeStage   = "Life stage"
	colFamilyStage = "Family stage"
	colGender      = "Gender"
	colSeason      = "Season"
	colCity        = "City"
	colRegion      = "Region"
	colLatitude    = "Latitude"
	colLongitude   = "Longitude"
	colGroupSize   = "Group size"
)

var requiredExternalFields = []string{colBatch, colExternalID, colName}

var optionalExternalFields = []string{
	colEmail, colAgeGroup, colLifeStage, colFamilyStage, colGender, colSeason,
	colCity, colRegion, colLatitude, colLongitude, colGroupSize,
}

// ExternalProfileID returns the stable id of an imported row, so re-imports update instead of duplicating
func ExternalProfileID(batchID, externalRef string) string {
	return uuid.NewSHA1(externalProfileNamespace, []byte(batchID+"/"+externalRef)).String()
}

// ListExternalProfiles retrieves and parses the rows of one imported batch
func (c *Client) ListExternalProfiles(cfg *config.Config, batchID string, importedAt time.Time) ([]db.ExternalProfile, error) {
	values, err := c.GetValues(cfg.ExternalProfilesSheetID, cfg.ExternalProfilesTab)
	if err != nil {
		return nil, fmt.Errorf("failed to get external profile data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	profiles, err := parseExternalProfiles(values, batchID, importedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse external profiles: %w", err)
	}

	return profiles, nil
}

// parseExternalProfiles converts raw sheet rows of the given batch into external profiles
func parseExternalProfiles(raw [][]interface{}, batchID string, importedAt time.Time) ([]db.ExternalProfile, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	fieldIndexes := make(map[string]int)
	headerRow := raw[0]
	for i, cell := range headerRow {
		if cellStr, ok := cell.(string); ok {
			fieldIndexes[strings.TrimSpace(cellStr)] = i
		}
	}

	for _, field := range requiredExternalFields {
		if _, ok := fieldIndexes[field]; !ok {
			return nil, fmt.Errorf("missing required field in header: %s", field)
		}
	}

	getField := func(field string, row []interface{}) string {
		index, ok := fieldIndexes[field]
		if !ok || index >= len(row) {
			return ""
		}
		if str, ok := row[index].(string); ok {
			return strings.TrimSpace(str)
		}
		return ""
	}

	var profiles []db.ExternalProfile
	seen := make(map[string]int)

	for i := 1; i < len(raw); i++ {
		row := raw[i]
		if getField(colBatch, row) != batchID {
			continue
		}

		ref := getField(colExternalID, row)
		name := getField(colName, row)
		// Skip empty rows
		if ref == "" && name == "" {
			continue
		}
		if ref == "" {
			return nil, fmt.Errorf("row %d: missing %s", i+1, colExternalID)
		}
		if first, ok := seen[ref]; ok {
			return nil, fmt.Errorf("row %d: %s %q already used in row %d", i+1, colExternalID, ref, first)
		}
		seen[ref] = i + 1

		profile := db.ExternalProfile{
			ID:             ExternalProfileID(batchID, ref),
			BatchID:        batchID,
			ExternalRef:    ref,
			DisplayName:    name,
			Email:          getField(colEmail, row),
			AgeGroup:       getField(colAgeGroup, row),
			LifeStage:      getField(colLifeStage, row),
			FamilyStage:    getField(colFamilyStage, row),
			Gender:         getField(colGender, row),
			SeasonInterest: getField(colSeason, row),
			City:           getField(colCity, row),
			Region:         getField(colRegion, row),
			ImportedAt:     importedAt,
		}

		var err error
		if profile.Latitude, err = parseOptionalFloat(getField(colLatitude, row)); err != nil {
			return nil, fmt.Errorf("row %d: invalid %s: %w", i+1, colLatitude, err)
		}
		if profile.Longitude, err = parseOptionalFloat(getField(colLongitude, row)); err != nil {
			return nil, fmt.Errorf("row %d: invalid %s: %w", i+1, colLongitude, err)
		}
		// A single coordinate cannot be used for distance
		if (profile.Latitude == nil) != (profile.Longitude == nil) {
			profile.Latitude, profile.Longitude = nil, nil
		}

		if size := getField(colGroupSize, row); size != "" {
			n, err := strconv.Atoi(size)
			if err != nil || n < 2 {
				return nil, fmt.Errorf("row %d: invalid %s %q", i+1, colGroupSize, size)
			}
			profile.GroupSizePreference = &n
		}

		profiles = append(profiles, profile)
	}

	return profiles, nil
}

func parseOptionalFloat(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
