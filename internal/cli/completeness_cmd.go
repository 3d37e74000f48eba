package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"verifyapi/internal/identity"
)

func newCompletenessCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "completeness FARM_ID",
		Short: "Show which mandatory documents a farm still lacks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Completeness.Evaluate(identity.WithActor(cmd.Context(), app.System), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res)
			}

			state := "incomplete"
			if res.Complete {
				state = "complete"
			}
			fmt.Fprintf(out, "farm %s: %s (%d/%d mandatory approved)\n",
				res.FarmID, state, res.ApprovedCount, res.TotalMandatory)
			for _, p := range res.PendingTypes {
				fmt.Fprintf(out, "  pending: %d %s\n", p.ID, p.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the evaluation as JSON")
	return cmd
}
