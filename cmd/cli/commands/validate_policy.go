package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/neighbourly/pkg/core/services"
)

// ValidatePolicyCmd creates the validatePolicy command
func ValidatePolicyCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validatePolicy <file>",
		Short:       "Check a policy file and print the effective policy",
		Args:        cobra.ExactArgs(1),
		Annotations: needs(NeedsNothing),
		RunE: func(cmd *cobra.Command, args []string) error {
			template, policy, err := services.ReadPolicyFile(args[0])
			if err != nil {
				return err
			}

			rendered, err := renderPolicy(template, policy)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ %s is a valid policy\n\n", args[0])
			fmt.Print(rendered)
			fmt.Println()

			return nil
		},
	}
}
