package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/neighbourly/pkg/core/services"
)

// ImportProfilesCmd creates the importProfiles command
func ImportProfilesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importProfiles <batch_id>",
		Short: "Import a batch of external profiles from the imports sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ImportExternalProfiles(
				app.Ctx,
				app.SheetsClient,
				app.Database,
				app.Cfg,
				app.Logger,
				args[0],
				time.Now(),
			)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Imported %d profiles into batch %s\n", result.Imported, result.BatchID)
			fmt.Printf("%sMatch them with: matchGroups <community_id> --batch %s%s\n\n", colorDim, result.BatchID, colorReset)

			return nil
		},
	}
}
