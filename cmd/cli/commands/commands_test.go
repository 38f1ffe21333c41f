package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/neighbourly/pkg/core/matcher"
	"github.com/jakechorley/neighbourly/pkg/core/services"
)

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
	}{
		{"plain", "matchGroups harbour --dry-run", []string{"matchGroups", "harbour", "--dry-run"}},
		{"extra spaces", "  nextRounds   3 ", []string{"nextRounds", "3"}},
		{"double quotes", `applyPolicy harbour "my policy.yaml"`, []string{"applyPolicy", "harbour", "my policy.yaml"}},
		{"single quotes", `importProfiles 'spring fair'`, []string{"importProfiles", "spring fair"}},
		{"empty quoted argument", `showTemplate ""`, []string{"showTemplate", ""}},
		{"empty line", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := parseCommandLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, args)
		})
	}
}

func TestParseCommandLine_UnclosedQuote(t *testing.T) {
	_, err := parseCommandLine(`applyPolicy harbour "policy.yaml`)
	assert.ErrorContains(t, err, "unclosed quote")
}

func TestRenderPolicy_AcceptedByParser(t *testing.T) {
	for _, name := range matcher.TemplateNames() {
		t.Run(name, func(t *testing.T) {
			policy, err := matcher.PolicyFromTemplate(name)
			require.NoError(t, err)

			rendered, err := renderPolicy(name, policy)
			require.NoError(t, err)
			assert.Contains(t, rendered, "template: "+name)

			template, parsed, err := services.ParsePolicy([]byte(rendered))
			require.NoError(t, err)
			assert.Equal(t, name, template)
			assert.Equal(t, policy, parsed)
		})
	}
}

func TestScoreColor(t *testing.T) {
	thresholds := matcher.DefaultThresholds

	assert.Equal(t, colorGreen, scoreColor(0.9, thresholds))
	assert.Equal(t, colorGreen, scoreColor(thresholds.NeutralScore, thresholds))
	assert.Equal(t, colorYellow, scoreColor(0.45, thresholds))
	assert.Equal(t, colorRed, scoreColor(thresholds.MinAcceptanceScore, thresholds))
}

func TestSeedFromFlags(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		cmd.Flags().String("seed", "", "")
		return cmd
	}

	cmd := newCmd()
	seed, err := seedFromFlags(cmd)
	require.NoError(t, err)
	assert.Nil(t, seed, "unset flag means a fresh seed")

	cmd = newCmd()
	require.NoError(t, cmd.Flags().Set("seed", "18446744073709551615"))
	seed, err = seedFromFlags(cmd)
	require.NoError(t, err)
	require.NotNil(t, seed)
	assert.Equal(t, uint64(18446744073709551615), *seed)

	cmd = newCmd()
	require.NoError(t, cmd.Flags().Set("seed", "-1"))
	_, err = seedFromFlags(cmd)
	assert.ErrorContains(t, err, "seed must be a non-negative integer")
}

func TestPoolFromFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addPoolFlags(cmd)

	assert.Equal(t, services.Pool{CommunityID: "harbour", Kind: matcher.PoolIndividuals}, poolFromFlags(cmd, "harbour"))

	require.NoError(t, cmd.Flags().Set("batch", "spring-fair"))
	require.NoError(t, cmd.Flags().Set("families", "true"))
	assert.Equal(t, services.Pool{CommunityID: "harbour", BatchID: "spring-fair", Kind: matcher.PoolFamilies}, poolFromFlags(cmd, "harbour"))
}

func TestNeeds(t *testing.T) {
	app := &AppContext{}

	assert.Equal(t, NeedsNothing, Needs(ShowTemplateCmd(app)))
	assert.Equal(t, NeedsNothing, Needs(ValidatePolicyCmd(app)))
	assert.Equal(t, NeedsConfig, Needs(NextRoundsCmd(app)))
	assert.Equal(t, NeedsAll, Needs(MatchGroupsCmd(app)))
}

func TestRunOutcomeError(t *testing.T) {
	assert.NoError(t, runOutcomeError(&services.MatchCommunityResult{Success: true}))

	err := runOutcomeError(&services.MatchCommunityResult{
		ValidationErrors: []matcher.GroupValidationError{
			{GroupIndex: 0, CriterionName: "Gender", Description: "mixed genders in a same-gender group"},
			{GroupIndex: 1, CriterionName: "Size", Description: "group below minimum size"},
		},
	})
	assert.EqualError(t, err, "run failed validation with 2 errors, nothing was saved")
}
