package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/neighbourly/pkg/core/matcher"
	"github.com/jakechorley/neighbourly/pkg/db"
)

// PolicyFile is the YAML document accepted by validatePolicy and applyPolicy.
// When template is set the remaining keys override the template's values.
type PolicyFile struct {
	Template string `yaml:"template,omitempty"`
}

// ReadPolicyFile parses and validates a policy document
func ReadPolicyFile(path string) (string, matcher.MatchingPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", matcher.MatchingPolicy{}, fmt.Errorf("failed to read policy file: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes a policy document, optionally based on a template, and validates it.
// Unknown keys are rejected so a misspelt dimension is not silently ignored.
func ParsePolicy(data []byte) (string, matcher.MatchingPolicy, error) {
	var header PolicyFile
	if err := yaml.Unmarshal(data, &header); err != nil {
		return "", matcher.MatchingPolicy{}, fmt.Errorf("failed to parse policy file: %w", err)
	}

	var doc struct {
		Template string `yaml:"template,omitempty"`

		matcher.MatchingPolicy `yaml:",inline"`
	}

	if header.Template != "" {
		base, err := matcher.PolicyFromTemplate(header.Template)
		if err != nil {
			return "", matcher.MatchingPolicy{}, err
		}
		doc.MatchingPolicy = base
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return "", matcher.MatchingPolicy{}, fmt.Errorf("failed to parse policy file: %w", err)
	}

	if err := doc.MatchingPolicy.Validate(); err != nil {
		return "", matcher.MatchingPolicy{}, err
	}

	return header.Template, doc.MatchingPolicy, nil
}

// ApplyPolicy validates a policy, stamps its version and stores it for the community
func ApplyPolicy(
	ctx context.Context,
	store db.PolicyStore,
	logger *zap.Logger,
	communityID string,
	template string,
	policy matcher.MatchingPolicy,
	now time.Time,
) (*db.CommunityPolicy, error) {
	logger.Debug("Starting applyPolicy", zap.String("community_id", communityID), zap.String("template", template))

	if communityID == "" {
		return nil, fmt.Errorf("community id is required")
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}

	policy.UpdatedAt = now.UTC()
	record := &db.CommunityPolicy{
		CommunityID: communityID,
		Template:    template,
		Policy:      policy,
		UpdatedAt:   policy.UpdatedAt,
	}

	if err := store.SavePolicy(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save policy: %w", err)
	}

	logger.Info("Applied policy", zap.String("community_id", communityID), zap.Time("updated_at", record.UpdatedAt))
	return record, nil
}
