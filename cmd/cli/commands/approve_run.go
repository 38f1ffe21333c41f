package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/neighbourly/pkg/core/matcher"
	"github.com/jakechorley/neighbourly/pkg/core/services"
	"github.com/jakechorley/neighbourly/pkg/db"
)

// ApproveRunCmd creates the approveRun command
func ApproveRunCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approveRun <run_id>",
		Short: "Approve a run held for review and introduce its groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ApproveRun(app.Ctx, app.Database, app.GmailClient, app.Metrics, app.Logger, args[0], time.Now())
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("no match run with id %s", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Printf("\n✅ Run %s %s\n\n", result.Run.ID, result.Run.Status)

			groups := make([]matcher.MatchGroup, len(result.Groups))
			for i, g := range result.Groups {
				groups[i] = matcher.MatchGroup{ID: g.ID, Members: g.Members, CompatibilityScore: g.CompatibilityScore}
			}
			printGroups(groups, app.Cfg.Matching.Thresholds)

			fmt.Printf("\n✉️  Sent %d introduction emails\n\n", result.EmailsSent)

			return nil
		},
	}
}
