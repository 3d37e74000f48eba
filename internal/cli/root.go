// Package cli implements verifyctl, the operator command line for schema
// migrations and the automated FINCA sweep.
package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"verifyapi/internal/identity"
	"verifyapi/internal/service"
)

// App holds the collaborators verifyctl commands run against.
type App struct {
	Roles        service.RoleService
	Completeness service.CompletenessService
	// Migrate applies pending schema steps and returns their names.
	Migrate func(ctx context.Context) ([]string, error)
	// System is the administrator automated jobs act as.
	System identity.Actor
}

// NewRootCmd creates the top-level "verifyctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "verifyctl",
		Short:         "Farm verification operations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(app),
		newCompletenessCmd(app),
		newSweepCmd(app),
	)

	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
