package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"verifyapi/internal/identity"
)

func newSweepCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Approve pending FINCA grants whose farm documentation is complete",
		Long: "Consults the verification gate for every PENDING FINCA grant and approves\n" +
			"those whose farm has every mandatory document approved. Blocked grants stay\n" +
			"PENDING and are listed with what is missing.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := identity.WithActor(cmd.Context(), app.System)
			res, err := app.Roles.Sweep(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res)
			}

			fmt.Fprintf(out, "approved %d, blocked %d\n", len(res.Approved), len(res.Blocked))
			for _, g := range res.Approved {
				fmt.Fprintf(out, "  approved %s user=%s farm=%s\n", g.ID, g.UserID, g.Metadata.FarmID)
			}
			for _, b := range res.Blocked {
				names := make([]string, len(b.PendingTypes))
				for i, p := range b.PendingTypes {
					names[i] = p.Name
				}
				fmt.Fprintf(out, "  blocked  %s user=%s farm=%s pending=%s\n",
					b.Grant.ID, b.Grant.UserID, b.Grant.Metadata.FarmID, strings.Join(names, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the sweep result as JSON")
	return cmd
}
