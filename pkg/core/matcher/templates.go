package matcher

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownTemplate is returned when a template name does not match any built-in template
var ErrUnknownTemplate = errors.New("unknown policy template")

// Thresholds are the tunable scoring constants of the engine
type Thresholds struct {
	// MinAcceptanceScore is the score a candidate must exceed to join a group
	MinAcceptanceScore float64 `yaml:"minAcceptanceScore" validate:"gte=0,lte=1"`

	// MismatchScore is the partial score given to a discouraged value
	MismatchScore float64 `yaml:"mismatchScore" validate:"gte=0,lte=1"`

	// NeutralScore is used when either side lacks the attribute
	NeutralScore float64 `yaml:"neutralScore" validate:"gte=0,lte=1"`

	// MinGroupSize is the default floor below which groups are disbanded
	MinGroupSize int `yaml:"minGroupSize" validate:"min=1"`
}

// DefaultThresholds holds the engine defaults
var DefaultThresholds = Thresholds{
	MinAcceptanceScore: 0.3,
	MismatchScore:      0.4,
	NeutralScore:       0.5,
	MinGroupSize:       4,
}

// Validate checks the thresholds are in range
func (t Thresholds) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}
	return nil
}

// Template names
const (
	TemplateDinnerClub      = "dinnerClub"
	TemplateFamilyTable     = "familyTable"
	TemplateWomenOnly       = "womenOnly"
	TemplateNeighborsNearby = "neighborsNearby"
)

// Gender values used by the built-in templates
const (
	GenderWomen = "women"
	GenderMen   = "men"
)

// MatchingPolicyTemplate is a named preset a community starts from
type MatchingPolicyTemplate struct {
	Name        string
	Description string
	Policy      MatchingPolicy
}

var templates = []MatchingPolicyTemplate{
	{
		Name:        TemplateDinnerClub,
		Description: "Mixed dinner groups of six neighbors with similar age and life stage",
		Policy: MatchingPolicy{
			Mode:             ModeReviewRequired,
			DefaultGroupSize: 6,
			FamilyGroupSize:  4,
			Gender:           DimensionRule{Alignment: AlignmentMix, Weight: 20},
			LifeStage:        DimensionRule{Alignment: AlignmentSame, Weight: 40},
			Age:              DimensionRule{Alignment: AlignmentSame, Weight: 60},
			FamilyStage:      DimensionRule{Alignment: AlignmentSame, Weight: 50},
			Season:           DimensionRule{Alignment: AlignmentSame, Weight: 30},
			Location: LocationRule{
				DimensionRule:       DimensionRule{Alignment: AlignmentSame, Weight: 80},
				Scope:               ScopeNearbyOk,
				MaxDistanceMiles:    5,
				SameCommunityWeight: 70,
			},
			FallbackStrategy: FallbackAutoRelax,
			MixBias:          MixBiasDiversify,
		},
	},
	{
		Name:        TemplateFamilyTable,
		Description: "Families with children grouped inside their own neighborhood",
		Policy: MatchingPolicy{
			Mode:             ModeReviewRequired,
			DefaultGroupSize: 6,
			FamilyGroupSize:  4,
			Gender:           DimensionRule{Alignment: AlignmentMix},
			LifeStage:        DimensionRule{Alignment: AlignmentMix},
			Age:              DimensionRule{Alignment: AlignmentSame, Weight: 30},
			FamilyStage:      DimensionRule{Alignment: AlignmentSame, Hard: true},
			Season:           DimensionRule{Alignment: AlignmentSame, Weight: 40},
			Location: LocationRule{
				DimensionRule:       DimensionRule{Alignment: AlignmentSame, Weight: 70},
				Scope:               ScopeInsideOnly,
				SameCommunityWeight: 100,
			},
			FallbackStrategy: FallbackFillPartial,
			MixBias:          MixBiasNeutral,
		},
	},
	{
		Name:        TemplateWomenOnly,
		Description: "Groups of four women, closest in age",
		Policy: MatchingPolicy{
			Mode:             ModeAutomatic,
			DefaultGroupSize: 4,
			FamilyGroupSize:  4,
			Gender:           DimensionRule{Alignment: AlignmentSame, Hard: true, Allowed: []string{GenderWomen}, RequirePresent: true},
			LifeStage:        DimensionRule{Alignment: AlignmentSame, Weight: 30},
			Age:              DimensionRule{Alignment: AlignmentSame, Weight: 60},
			FamilyStage:      DimensionRule{Alignment: AlignmentMix},
			Season:           DimensionRule{Alignment: AlignmentMix},
			Location: LocationRule{
				DimensionRule:       DimensionRule{Alignment: AlignmentSame, Weight: 50},
				Scope:               ScopeNearbyOk,
				MaxDistanceMiles:    10,
				SameCommunityWeight: 50,
			},
			FallbackStrategy: FallbackWaitlist,
			MixBias:          MixBiasNeutral,
		},
	},
	{
		Name:        TemplateNeighborsNearby,
		Description: "Neighborhood-only groups with no other preferences",
		Policy: MatchingPolicy{
			Mode:             ModeAutomatic,
			DefaultGroupSize: 4,
			FamilyGroupSize:  4,
			Gender:           DimensionRule{Alignment: AlignmentMix},
			LifeStage:        DimensionRule{Alignment: AlignmentMix},
			Age:              DimensionRule{Alignment: AlignmentMix},
			FamilyStage:      DimensionRule{Alignment: AlignmentMix},
			Season:           DimensionRule{Alignment: AlignmentMix},
			Location: LocationRule{
				DimensionRule: DimensionRule{Alignment: AlignmentSame, Hard: true},
				Scope:         ScopeInsideOnly,
			},
			FallbackStrategy: FallbackFillPartial,
			MixBias:          MixBiasNeutral,
		},
	},
}

// Templates returns copies of all built-in templates
func Templates() []MatchingPolicyTemplate {
	result := make([]MatchingPolicyTemplate, len(templates))
	for i, template := range templates {
		template.Policy = template.Policy.Clone()
		result[i] = template
	}
	return result
}

// TemplateNames returns the names of the built-in templates
func TemplateNames() []string {
	names := make([]string, len(templates))
	for i, template := range templates {
		names[i] = template.Name
	}
	return names
}

// PolicyFromTemplate returns a fresh copy of the named template's policy
func PolicyFromTemplate(name string) (MatchingPolicy, error) {
	idx := slices.IndexFunc(templates, func(t MatchingPolicyTemplate) bool {
		return t.Name == name
	})
	if idx < 0 {
		return MatchingPolicy{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownTemplate, name, TemplateNames())
	}
	return templates[idx].Policy.Clone(), nil
}
