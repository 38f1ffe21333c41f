package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/neighbourly/pkg/core/services"
)

// SimulateCmd creates the simulate command
func SimulateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <community_id>",
		Short: "Preview how many groups a community's policy would form",
		Long: `Run the group builder without saving anything.
With --runs greater than one, the builder is run repeatedly with fresh seeds and the
spread of outcomes is reported. --variance uses the configured number of runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, _ := cmd.Flags().GetInt("runs")
			variance, _ := cmd.Flags().GetBool("variance")
			seed, err := seedFromFlags(cmd)
			if err != nil {
				return err
			}
			pool := poolFromFlags(cmd, args[0])

			if variance && !cmd.Flags().Changed("runs") {
				runs = app.Cfg.Matching.VariancePreviewRuns
			}
			if runs < 1 {
				return fmt.Errorf("runs must be a positive integer, got: %d", runs)
			}

			app.Logger.Debug("simulate command",
				zap.String("community_id", pool.CommunityID),
				zap.String("batch_id", pool.BatchID),
				zap.Int("runs", runs))

			if runs > 1 {
				if seed != nil {
					return fmt.Errorf("--seed cannot be combined with more than one run")
				}

				summary, err := services.PreviewCommunityVariance(app.Ctx, app.Database, app.Cfg, app.Logger, pool, runs)
				if err != nil {
					return fmt.Errorf("simulation failed: %w", err)
				}

				fmt.Printf("\n🔮 Simulation Spread (%d runs)\n\n", summary.Runs)
				fmt.Printf("%-10s %6s %6s %8s\n", "", "min", "max", "mean")
				fmt.Printf("%-10s %6d %6d %8.1f\n", "Groups", summary.MinGroups, summary.MaxGroups, summary.MeanGroups)
				fmt.Printf("%-10s %6d %6d %8.1f\n", "Waitlist", summary.MinWaitlist, summary.MaxWaitlist, summary.MeanWaitlist)
				fmt.Printf("\n%sReplay any run with --seed; seeds: %v%s\n\n", colorDim, summary.Seeds, colorReset)
				return nil
			}

			summary, err := services.SimulateCommunity(app.Ctx, app.Database, app.Cfg, app.Logger, services.SimulateCommunityRequest{
				Pool: pool,
				Seed: seed,
			})
			if err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			fmt.Printf("\n🔮 Simulation\n\n")
			fmt.Printf("Eligible members: %d\n", summary.EligibleMembers)
			fmt.Printf("Potential groups: %d\n", summary.PotentialGroups)
			fmt.Printf("Waitlisted:       %d\n", summary.WaitlistMembers)
			fmt.Printf("Seed:             %d\n\n", summary.Seed)

			return nil
		},
	}

	cmd.Flags().String("seed", "", "Seed for a reproducible simulation")
	cmd.Flags().Int("runs", 1, "Number of simulations to run")
	cmd.Flags().Bool("variance", false, "Run the configured number of simulations")
	addPoolFlags(cmd)

	return cmd
}
