package matcher

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidPolicy is returned (wrapped) whenever a policy fails validation
var ErrInvalidPolicy = errors.New("invalid matching policy")

// PolicyMode controls whether Group Builder output is committed directly or held for approval
type PolicyMode string

const (
	ModeAutomatic      PolicyMode = "automatic"
	ModeReviewRequired PolicyMode = "reviewRequired"
)

// Alignment says whether members of a group may differ on a dimension
type Alignment string

const (
	AlignmentMix  Alignment = "mix"
	AlignmentSame Alignment = "same"
)

// LocationScope limits how far apart members of a group may live
type LocationScope string

const (
	ScopeInsideOnly LocationScope = "insideOnly"
	ScopeNearbyOk   LocationScope = "nearbyOk"
)

// FallbackStrategy is applied when a group cannot be grown to its target size
type FallbackStrategy string

const (
	FallbackFillPartial FallbackStrategy = "fillPartial"
	FallbackAutoRelax   FallbackStrategy = "autoRelax"
	FallbackWaitlist    FallbackStrategy = "waitlist"
)

// MixBias chooses how a soft "mix" dimension is scored.
//
//   - diversify: a value not yet present in the group scores 1.0, a repeated value scores the mismatch score
//   - neutral: every candidate scores the neutral score, so the dimension does not steer grouping
type MixBias string

const (
	MixBiasDiversify MixBias = "diversify"
	MixBiasNeutral   MixBias = "neutral"
)

// DimensionKey identifies a matchable dimension
type DimensionKey string

const (
	DimensionGender      DimensionKey = "gender"
	DimensionLifeStage   DimensionKey = "lifeStage"
	DimensionAge         DimensionKey = "age"
	DimensionFamilyStage DimensionKey = "familyStage"
	DimensionLocation    DimensionKey = "location"
	DimensionSeason      DimensionKey = "season"
)

// DimensionOrder is the fixed evaluation order of dimensions.
// Ties between equally weighted dimensions are broken by this order.
var DimensionOrder = []DimensionKey{
	DimensionGender,
	DimensionLifeStage,
	DimensionAge,
	DimensionFamilyStage,
	DimensionLocation,
	DimensionSeason,
}

// DimensionRule configures one matchable dimension
type DimensionRule struct {
	Alignment Alignment `yaml:"alignment" json:"alignment" validate:"required,oneof=mix same"`

	// Hard turns the dimension into a filter; its weight is then ignored
	Hard bool `yaml:"hard" json:"hard"`

	// Weight is the contribution of the dimension to the aggregate score (0-100)
	Weight float64 `yaml:"weight" json:"weight" validate:"gte=0,lte=100"`

	// Allowed restricts eligible values for a hard dimension (e.g. women-only groups)
	Allowed []string `yaml:"allowed,omitempty" json:"allowed,omitempty" validate:"omitempty,dive,required"`

	// RequirePresent rejects candidates missing this attribute (hard dimensions only)
	RequirePresent bool `yaml:"requirePresent,omitempty" json:"requirePresent,omitempty"`
}

// IsActive returns false when the dimension neither filters nor contributes weight
func (r DimensionRule) IsActive() bool {
	return r.Hard || r.Weight > 0
}

// LocationRule configures the location dimension
type LocationRule struct {
	DimensionRule `yaml:",inline"`

	Scope LocationScope `yaml:"scope" json:"scope" validate:"required,oneof=insideOnly nearbyOk"`

	// MaxDistanceMiles is the radius within which neighbors count as nearby (nearbyOk only)
	MaxDistanceMiles float64 `yaml:"maxDistanceMiles" json:"maxDistanceMiles" validate:"gte=0"`

	// SameCommunityWeight (0-100) is how strongly members of the same neighborhood are preferred over nearby ones
	SameCommunityWeight float64 `yaml:"sameCommunityWeight" json:"sameCommunityWeight" validate:"gte=0,lte=100"`

	// Adjacency lists neighboring neighborhoods, used when coordinates are missing
	Adjacency map[string][]string `yaml:"adjacency,omitempty" json:"adjacency,omitempty"`
}

// MatchingPolicy is the configuration of one community (or one imported batch)
type MatchingPolicy struct {
	Mode PolicyMode `yaml:"mode" json:"mode" validate:"required,oneof=automatic reviewRequired"`

	DefaultGroupSize int `yaml:"defaultGroupSize" json:"defaultGroupSize" validate:"min=2"`
	FamilyGroupSize  int `yaml:"familyGroupSize" json:"familyGroupSize" validate:"min=2"`

	// MinGroupSize overrides the builder's minimum group size floor when non-zero
	MinGroupSize int `yaml:"minGroupSize,omitempty" json:"minGroupSize,omitempty" validate:"gte=0"`

	Gender      DimensionRule `yaml:"gender" json:"gender"`
	LifeStage   DimensionRule `yaml:"lifeStage" json:"lifeStage"`
	Age         DimensionRule `yaml:"age" json:"age"`
	FamilyStage DimensionRule `yaml:"familyStage" json:"familyStage"`
	Season      DimensionRule `yaml:"season" json:"season"`
	Location    LocationRule  `yaml:"location" json:"location"`

	FallbackStrategy FallbackStrategy `yaml:"fallbackStrategy" json:"fallbackStrategy" validate:"required,oneof=fillPartial autoRelax waitlist"`
	MixBias          MixBias          `yaml:"mixBias" json:"mixBias" validate:"required,oneof=diversify neutral"`

	UpdatedAt time.Time `yaml:"updatedAt,omitempty" json:"updatedAt"`
}

var validate = validator.New()

// Validate checks the policy and returns an error wrapping ErrInvalidPolicy on the first problem.
// Values are never clamped or guessed.
func (p *MatchingPolicy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
	}

	if p.MinGroupSize > 0 && p.MinGroupSize > min(p.DefaultGroupSize, p.FamilyGroupSize) {
		return fmt.Errorf("%w: minGroupSize %d exceeds a target group size (default %d, family %d)",
			ErrInvalidPolicy, p.MinGroupSize, p.DefaultGroupSize, p.FamilyGroupSize)
	}

	for _, key := range DimensionOrder {
		rule := p.Rule(key)
		if !rule.Hard && len(rule.Allowed) > 0 {
			return fmt.Errorf("%w: %s.allowed is only valid on a hard dimension", ErrInvalidPolicy, key)
		}
		if !rule.Hard && rule.RequirePresent {
			return fmt.Errorf("%w: %s.requirePresent is only valid on a hard dimension", ErrInvalidPolicy, key)
		}
	}

	for _, value := range p.Age.Allowed {
		if AgeGroup(value).Ordinal() < 0 {
			return fmt.Errorf("%w: age.allowed contains unknown age group %q", ErrInvalidPolicy, value)
		}
	}

	// Candidate genders are lowercased on load, so a mixed-case value could never match
	for _, value := range p.Gender.Allowed {
		if value != strings.ToLower(strings.TrimSpace(value)) {
			return fmt.Errorf("%w: gender.allowed value %q must be lowercase", ErrInvalidPolicy, value)
		}
	}

	for _, value := range p.Season.Allowed {
		if !slices.Contains(Seasons, value) {
			return fmt.Errorf("%w: season.allowed contains unknown season %q", ErrInvalidPolicy, value)
		}
	}

	if p.Location.Scope == ScopeNearbyOk && p.Location.MaxDistanceMiles <= 0 && len(p.Location.Adjacency) == 0 {
		return fmt.Errorf("%w: location.scope nearbyOk needs maxDistanceMiles or adjacency", ErrInvalidPolicy)
	}

	for neighborhood := range p.Location.Adjacency {
		if neighborhood == "" {
			return fmt.Errorf("%w: location.adjacency has an empty neighborhood id", ErrInvalidPolicy)
		}
	}

	return nil
}

// Rule returns the rule for the given dimension.
// The location rule is returned as its embedded DimensionRule.
func (p *MatchingPolicy) Rule(key DimensionKey) DimensionRule {
	switch key {
	case DimensionGender:
		return p.Gender
	case DimensionLifeStage:
		return p.LifeStage
	case DimensionAge:
		return p.Age
	case DimensionFamilyStage:
		return p.FamilyStage
	case DimensionLocation:
		return p.Location.DimensionRule
	case DimensionSeason:
		return p.Season
	}
	return DimensionRule{}
}

// WithWeight returns a copy of the policy with the weight of one dimension replaced
func (p MatchingPolicy) WithWeight(key DimensionKey, weight float64) MatchingPolicy {
	switch key {
	case DimensionGender:
		p.Gender.Weight = weight
	case DimensionLifeStage:
		p.LifeStage.Weight = weight
	case DimensionAge:
		p.Age.Weight = weight
	case DimensionFamilyStage:
		p.FamilyStage.Weight = weight
	case DimensionLocation:
		p.Location.Weight = weight
	case DimensionSeason:
		p.Season.Weight = weight
	}
	return p
}

// TargetSize returns the group size the builder aims for with the given pool
func (p *MatchingPolicy) TargetSize(kind PoolKind) int {
	if kind == PoolFamilies {
		return p.FamilyGroupSize
	}
	return p.DefaultGroupSize
}

// EffectiveMinGroupSize returns the smallest group the builder will commit.
// The policy's MinGroupSize wins over the thresholds; neither may exceed the target size.
func (p *MatchingPolicy) EffectiveMinGroupSize(kind PoolKind, thresholds Thresholds) int {
	floor := thresholds.MinGroupSize
	if p.MinGroupSize > 0 {
		floor = p.MinGroupSize
	}
	return min(floor, p.TargetSize(kind))
}

// LowestWeightSoftDimension returns the soft dimension with the lowest positive weight.
// Returns false if there are no weighted soft dimensions.
func (p *MatchingPolicy) LowestWeightSoftDimension() (DimensionKey, bool) {
	var lowest DimensionKey
	found := false
	lowestWeight := 0.0

	for _, key := range DimensionOrder {
		rule := p.Rule(key)
		if rule.Hard || rule.Weight <= 0 {
			continue
		}
		if !found || rule.Weight < lowestWeight {
			lowest = key
			lowestWeight = rule.Weight
			found = true
		}
	}

	return lowest, found
}

// Clone returns a deep copy of the policy
func (p MatchingPolicy) Clone() MatchingPolicy {
	p.Gender.Allowed = slices.Clone(p.Gender.Allowed)
	p.LifeStage.Allowed = slices.Clone(p.LifeStage.Allowed)
	p.Age.Allowed = slices.Clone(p.Age.Allowed)
	p.FamilyStage.Allowed = slices.Clone(p.FamilyStage.Allowed)
	p.Season.Allowed = slices.Clone(p.Season.Allowed)
	p.Location.Allowed = slices.Clone(p.Location.Allowed)

	if p.Location.Adjacency != nil {
		adjacency := maps.Clone(p.Location.Adjacency)
		for neighborhood, neighbors := range adjacency {
			adjacency[neighborhood] = slices.Clone(neighbors)
		}
		p.Location.Adjacency = adjacency
	}

	return p
}
