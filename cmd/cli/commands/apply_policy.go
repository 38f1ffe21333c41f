package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/neighbourly/pkg/core/services"
)

// ApplyPolicyCmd creates the applyPolicy command
func ApplyPolicyCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "applyPolicy <community_id> <file>",
		Short: "Validate a policy file and store it for a community",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			template, policy, err := services.ReadPolicyFile(args[1])
			if err != nil {
				return err
			}

			record, err := services.ApplyPolicy(app.Ctx, app.Database, app.Logger, args[0], template, policy, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Policy applied to %s\n", record.CommunityID)
			if record.Template != "" {
				fmt.Printf("Template: %s\n", record.Template)
			}
			fmt.Printf("Mode:     %s\n", record.Policy.Mode)
			fmt.Printf("Version:  %s\n\n", record.UpdatedAt.Format(time.RFC3339))

			return nil
		},
	}
}
