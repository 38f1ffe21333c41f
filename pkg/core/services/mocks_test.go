package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/neighbourly/internal/config"
	"github.com/jakechorley/neighbourly/pkg/core/matcher"
	"github.com/jakechorley/neighbourly/pkg/db"
)

// mockStore implements a test double for db.Database
type mockStore struct {
	policies         map[string]*db.CommunityPolicy
	profiles         map[string][]db.Profile
	externalProfiles map[string][]db.ExternalProfile

	runs      map[string]*db.MatchRun
	runGroups map[string][]db.MatchGroup

	savedPolicies    []*db.CommunityPolicy
	insertedExternal []db.ExternalProfile
	statusUpdates    []string
	introduced       []string

	getPolicyErr   error
	getProfilesErr error
	insertRunErr   error
	approveErr     error
}

func newMockStore() *mockStore {
	return &mockStore{
		policies:         make(map[string]*db.CommunityPolicy),
		profiles:         make(map[string][]db.Profile),
		externalProfiles: make(map[string][]db.ExternalProfile),
		runs:             make(map[string]*db.MatchRun),
		runGroups:        make(map[string][]db.MatchGroup),
	}
}

func (m *mockStore) GetPolicy(ctx context.Context, communityID string) (*db.CommunityPolicy, error) {
	if m.getPolicyErr != nil {
		return nil, m.getPolicyErr
	}
	policy, ok := m.policies[communityID]
	if !ok {
		return nil, fmt.Errorf("policy for community %s: %w", communityID, db.ErrNotFound)
	}
	return policy, nil
}

func (m *mockStore) SavePolicy(ctx context.Context, policy *db.CommunityPolicy) error {
	m.savedPolicies = append(m.savedPolicies, policy)
	m.policies[policy.CommunityID] = policy
	return nil
}

func (m *mockStore) GetCommunityProfiles(ctx context.Context, communityID string) ([]db.Profile, error) {
	if m.getProfilesErr != nil {
		return nil, m.getProfilesErr
	}
	return m.profiles[communityID], nil
}

func (m *mockStore) GetExternalProfiles(ctx context.Context, batchID string) ([]db.ExternalProfile, error) {
	if m.getProfilesErr != nil {
		return nil, m.getProfilesErr
	}
	return m.externalProfiles[batchID], nil
}

func (m *mockStore) InsertExternalProfiles(ctx context.Context, profiles []db.ExternalProfile) error {
	m.insertedExternal = append(m.insertedExternal, profiles...)
	return nil
}

func (m *mockStore) InsertMatchRun(ctx context.Context, run *db.MatchRun, groups []db.MatchGroup) error {
	if m.insertRunErr != nil {
		return m.insertRunErr
	}
	m.runs[run.ID] = run
	m.runGroups[run.ID] = groups
	return nil
}

func (m *mockStore) GetMatchRun(ctx context.Context, runID string) (*db.MatchRun, []db.MatchGroup, error) {
	run, ok := m.runs[runID]
	if !ok {
		return nil, nil, fmt.Errorf("match run %s: %w", runID, db.ErrNotFound)
	}
	return run, m.runGroups[runID], nil
}

func (m *mockStore) ApproveMatchRun(ctx context.Context, runID string, at time.Time) error {
	if m.approveErr != nil {
		return m.approveErr
	}
	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("match run %s: %w", runID, db.ErrNotFound)
	}
	if run.Status != db.RunStatusPendingReview {
		return fmt.Errorf("%w: %s is %s", db.ErrRunNotPending, runID, run.Status)
	}
	run.Status = db.RunStatusApproved
	m.statusUpdates = append(m.statusUpdates, runID+":"+db.RunStatusApproved)
	return nil
}

func (m *mockStore) MarkRunIntroduced(ctx context.Context, runID string, at time.Time) error {
	m.introduced = append(m.introduced, runID)
	if run, ok := m.runs[runID]; ok && run.IntroducedAt == nil {
		run.IntroducedAt = &at
	}
	return nil
}

// mockNotifier records every introduced group
type mockNotifier struct {
	groups  [][]db.Contact
	sendErr error
}

func (m *mockNotifier) SendGroupIntroduction(members []db.Contact) (int, error) {
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.groups = append(m.groups, members)
	sent := 0
	for _, member := range members {
		if member.Email != "" {
			sent++
		}
	}
	return sent, nil
}

// mockSheets serves external profile batches
type mockSheets struct {
	profiles []db.ExternalProfile
	err      error
}

func (m *mockSheets) ListExternalProfiles(cfg *config.Config, batchID string, importedAt time.Time) ([]db.ExternalProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []db.ExternalProfile
	for _, p := range m.profiles {
		if p.BatchID == batchID {
			p.ImportedAt = importedAt
			result = append(result, p)
		}
	}
	return result, nil
}

func testConfig() *config.Config {
	return &config.Config{
		DatabaseURL:             "postgres://localhost/neighbourly_test",
		ExternalProfilesSheetID: "sheet",
		ExternalProfilesTab:     "Imports",
		GmailUserID:             "me",
		MatchSchedule:           "FREQ=WEEKLY;BYDAY=TH",
		Matching: config.MatchingConfig{
			Thresholds:          matcher.DefaultThresholds,
			VariancePreviewRuns: 5,
		},
	}
}

// neighborhoodProfiles returns n active individual profiles living in one neighborhood
func neighborhoodProfiles(communityID, neighborhood string, n int) []db.Profile {
	profiles := make([]db.Profile, n)
	for i := range profiles {
		id := fmt.Sprintf("%s-%d", neighborhood, i+1)
		profiles[i] = db.Profile{
			ID:             id,
			CommunityID:    communityID,
			DisplayName:    id,
			Email:          id + "@example.com",
			NeighborhoodID: neighborhood,
			HouseholdType:  db.HouseholdIndividual,
			Active:         true,
		}
	}
	return profiles
}

func templatePolicy(name string, mode matcher.PolicyMode) *db.CommunityPolicy {
	policy, err := matcher.PolicyFromTemplate(name)
	if err != nil {
		panic(err)
	}
	policy.Mode = mode
	return &db.CommunityPolicy{CommunityID: "harbour", Template: name, Policy: policy}
}

func seed(v uint64) *uint64 {
	return &v
}

// openPolicy accepts anyone and groups in fours
func openPolicy(mode matcher.PolicyMode) *db.CommunityPolicy {
	return &db.CommunityPolicy{
		CommunityID: "harbour",
		Policy: matcher.MatchingPolicy{
			Mode:             mode,
			DefaultGroupSize: 4,
			FamilyGroupSize:  4,
			Gender:           matcher.DimensionRule{Alignment: matcher.AlignmentMix},
			LifeStage:        matcher.DimensionRule{Alignment: matcher.AlignmentMix},
			Age:              matcher.DimensionRule{Alignment: matcher.AlignmentMix},
			FamilyStage:      matcher.DimensionRule{Alignment: matcher.AlignmentMix},
			Season:           matcher.DimensionRule{Alignment: matcher.AlignmentMix},
			Location: matcher.LocationRule{
				DimensionRule: matcher.DimensionRule{Alignment: matcher.AlignmentSame},
				Scope:         matcher.ScopeInsideOnly,
			},
			FallbackStrategy: matcher.FallbackFillPartial,
			MixBias:          matcher.MixBiasDiversify,
		},
	}
}
