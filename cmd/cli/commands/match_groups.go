package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/neighbourly/pkg/core/services"
	"github.com/jakechorley/neighbourly/pkg/db"
)

// MatchGroupsCmd creates the matchGroups command
func MatchGroupsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matchGroups <community_id>",
		Short: "Form groups for a community and introduce their members",
		Long: `Run the group builder over a community's active profiles (or an imported batch).
Automatic policies commit the run and email every group. Review-required policies hold
the run until approveRun.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			seed, err := seedFromFlags(cmd)
			if err != nil {
				return err
			}
			pool := poolFromFlags(cmd, args[0])

			app.Logger.Debug("matchGroups command",
				zap.String("community_id", pool.CommunityID),
				zap.String("batch_id", pool.BatchID),
				zap.Bool("dry_run", dryRun))

			result, err := services.MatchCommunity(
				app.Ctx,
				app.Database,
				app.GmailClient,
				app.Metrics,
				app.Cfg,
				app.Logger,
				services.MatchCommunityRequest{Pool: pool, Seed: seed, DryRun: dryRun},
			)
			if err != nil {
				return fmt.Errorf("matching failed: %w", err)
			}

			run := result.Result

			fmt.Printf("\n🍽  Match Results\n\n")
			fmt.Printf("Community:   %s\n", pool.CommunityID)
			if pool.BatchID != "" {
				fmt.Printf("Batch:       %s\n", pool.BatchID)
			}
			fmt.Printf("Seed:        %d\n", run.Seed)
			switch {
			case !result.Success:
				fmt.Printf("Status:      ❌ FAILED (not saved)\n")
			case dryRun:
				fmt.Printf("Mode:        🧪 DRY RUN (not saved)\n")
			case result.Status == db.RunStatusPendingReview:
				fmt.Printf("Status:      ⏸  HELD FOR REVIEW (run %s)\n", result.RunID)
			default:
				fmt.Printf("Status:      ✅ COMMITTED (run %s)\n", result.RunID)
			}
			fmt.Println()

			if len(result.ValidationErrors) > 0 {
				fmt.Printf("⚠️  Validation Errors (%d):\n", len(result.ValidationErrors))
				for _, verr := range result.ValidationErrors {
					fmt.Printf("  • Group %d - %s: %s\n", verr.GroupIndex+1, verr.CriterionName, verr.Description)
				}
				fmt.Println()
			}

			fmt.Printf("Eligible: %d   Groups: %d   Placed: %d   Waitlisted: %d\n\n",
				run.EligibleCount, run.GroupsFormed, run.PlacedCount(), len(run.Waitlist))

			printGroups(run.Groups, app.Cfg.Matching.Thresholds)

			if len(run.Waitlist) > 0 {
				fmt.Printf("\n%sWaitlist:%s %s\n", colorDim, colorReset, strings.Join(run.Waitlist, ", "))
			}

			if result.EmailsSent > 0 {
				fmt.Printf("\n✉️  Sent %d introduction emails\n", result.EmailsSent)
			}
			fmt.Println()

			return runOutcomeError(result)
		},
	}

	cmd.Flags().String("seed", "", "Seed for a reproducible run")
	cmd.Flags().Bool("dry-run", false, "Build and validate groups without saving or emailing")
	addPoolFlags(cmd)

	return cmd
}

// runOutcomeError reports a run that failed validation so the command exits non-zero
func runOutcomeError(result *services.MatchCommunityResult) error {
	if result.Success {
		return nil
	}
	return fmt.Errorf("run failed validation with %d errors, nothing was saved", len(result.ValidationErrors))
}
