package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/neighbourly/pkg/core/services"
)

// NextRoundsCmd creates the nextRounds command
func NextRoundsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:         "nextRounds <count>",
		Short:       "List the upcoming matching rounds from the configured schedule",
		Args:        cobra.ExactArgs(1),
		Annotations: needs(NeedsConfig),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil || count < 1 {
				return fmt.Errorf("count must be a positive integer, got: %s", args[0])
			}

			rounds, err := services.NextMatchRounds(app.Cfg, time.Now(), count)
			if err != nil {
				return err
			}

			fmt.Printf("\nUpcoming matching rounds (%s):\n", app.Cfg.MatchSchedule)
			for i, round := range rounds {
				fmt.Printf("  %2d. %s\n", i+1, round.Format("2006-01-02 (Monday)"))
			}
			if len(rounds) < count {
				fmt.Printf("%s  schedule ends after %d rounds%s\n", colorDim, len(rounds), colorReset)
			}
			fmt.Println()

			return nil
		},
	}
}
