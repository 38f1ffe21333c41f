package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/neighbourly/pkg/core/matcher"
)

// ShowTemplateCmd creates the showTemplate command
func ShowTemplateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:         "showTemplate [name]",
		Short:       "List the policy templates, or print one as a policy file",
		Args:        cobra.MaximumNArgs(1),
		Annotations: needs(NeedsNothing),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Printf("\nAvailable templates:\n\n")
				for _, t := range matcher.Templates() {
					fmt.Printf("  %-20s %s\n", t.Name, t.Description)
				}
				fmt.Println()
				return nil
			}

			policy, err := matcher.PolicyFromTemplate(args[0])
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(matcher.TemplateNames(), ", "))
			}

			rendered, err := renderPolicy(args[0], policy)
			if err != nil {
				return err
			}
			fmt.Print(rendered)

			return nil
		},
	}
}
