package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/neighbourly/pkg/core/services"
)

// ScoreCandidateCmd creates the scoreCandidate command
func ScoreCandidateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scoreCandidate <community_id> <candidate_id> <member_id>...",
		Short: "Score how well a candidate fits alongside the given members",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool := poolFromFlags(cmd, args[0])

			result, err := services.ScoreCandidate(app.Ctx, app.Database, app.Cfg, app.Logger, pool, args[1], args[2:])
			if err != nil {
				return err
			}

			thresholds := app.Cfg.Matching.Thresholds
			verdict := "would be accepted"
			if result.Score <= thresholds.MinAcceptanceScore {
				verdict = "would not be accepted"
			}

			fmt.Printf("\n%s with %s\n", result.CandidateID, strings.Join(result.MemberIDs, ", "))
			fmt.Printf("Score: %s%.3f%s (%s)\n\n", scoreColor(result.Score, thresholds), result.Score, colorReset, verdict)

			return nil
		},
	}

	addPoolFlags(cmd)

	return cmd
}
