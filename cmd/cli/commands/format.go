package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/neighbourly/pkg/core/matcher"
	"github.com/jakechorley/neighbourly/pkg/core/services"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
)

// addPoolFlags registers the flags selecting a candidate pool
func addPoolFlags(cmd *cobra.Command) {
	cmd.Flags().String("batch", "", "Match an imported batch instead of the community's profiles")
	cmd.Flags().Bool("families", false, "Match family households instead of individuals")
}

// poolFromFlags builds the pool selected by addPoolFlags
func poolFromFlags(cmd *cobra.Command, communityID string) services.Pool {
	batchID, _ := cmd.Flags().GetString("batch")
	families, _ := cmd.Flags().GetBool("families")

	pool := services.Pool{CommunityID: communityID, BatchID: batchID, Kind: matcher.PoolIndividuals}
	if families {
		pool.Kind = matcher.PoolFamilies
	}
	return pool
}

// seedFromFlags returns the --seed value, or nil when the flag was not given
func seedFromFlags(cmd *cobra.Command) (*uint64, error) {
	if !cmd.Flags().Changed("seed") {
		return nil, nil
	}
	raw, _ := cmd.Flags().GetString("seed")
	seed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("seed must be a non-negative integer, got: %s", raw)
	}
	return &seed, nil
}

// scoreColor picks the color of a compatibility score
func scoreColor(score float64, thresholds matcher.Thresholds) string {
	switch {
	case score >= thresholds.NeutralScore:
		return colorGreen
	case score > thresholds.MinAcceptanceScore:
		return colorYellow
	default:
		return colorRed
	}
}

// renderPolicy renders a policy as the YAML document accepted by applyPolicy
func renderPolicy(template string, policy matcher.MatchingPolicy) (string, error) {
	doc := struct {
		Template string `yaml:"template,omitempty"`

		matcher.MatchingPolicy `yaml:",inline"`
	}{Template: template, MatchingPolicy: policy}

	var b strings.Builder
	encoder := yaml.NewEncoder(&b)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to render policy: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to render policy: %w", err)
	}
	return b.String(), nil
}

func printGroups(groups []matcher.MatchGroup, thresholds matcher.Thresholds) {
	for i, group := range groups {
		color := scoreColor(group.CompatibilityScore, thresholds)
		fmt.Printf("  %sGroup %d%s  %s%.2f%s  %s(%s)%s\n",
			colorBold, i+1, colorReset,
			color, group.CompatibilityScore, colorReset,
			colorDim, group.ID, colorReset)
		for _, member := range group.Members {
			fmt.Printf("    • %s\n", member)
		}
	}
}
