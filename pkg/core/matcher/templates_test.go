package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_AllValid(t *testing.T) {
	for _, template := range Templates() {
		t.Run(template.Name, func(t *testing.T) {
			assert.NoError(t, template.Policy.Validate())
			assert.NotEmpty(t, template.Description)
		})
	}
}

func TestTemplateNames(t *testing.T) {
	assert.Equal(t, []string{
		TemplateDinnerClub,
		TemplateFamilyTable,
		TemplateWomenOnly,
		TemplateNeighborsNearby,
	}, TemplateNames())
}

func TestPolicyFromTemplate_Unknown(t *testing.T) {
	_, err := PolicyFromTemplate("potluck")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestPolicyFromTemplate_ReturnsCopy(t *testing.T) {
	policy, err := PolicyFromTemplate(TemplateWomenOnly)
	require.NoError(t, err)

	policy.Gender.Allowed[0] = GenderMen
	policy.DefaultGroupSize = 10

	fresh, err := PolicyFromTemplate(TemplateWomenOnly)
	require.NoError(t, err)

	assert.Equal(t, []string{GenderWomen}, fresh.Gender.Allowed)
	assert.Equal(t, 4, fresh.DefaultGroupSize)
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds.Validate())

	invalid := DefaultThresholds
	invalid.MinGroupSize = 0
	assert.Error(t, invalid.Validate())

	invalid = DefaultThresholds
	invalid.MinAcceptanceScore = -0.1
	assert.Error(t, invalid.Validate())
}
