package cli

import (
	"errors"
	"fmt"

	"github.com/sidoarjo/callcenter/internal/admin"
	"github.com/sidoarjo/callcenter/internal/core"
	"github.com/sidoarjo/callcenter/internal/database"
	"github.com/spf13/cobra"
)

func newResetCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset [table]...",
		Short: "Delete all imported rows",
		Long:  `Empties the named tables, or every table when none is named. Requires --yes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to reset without --yes")
			}
			schemas, err := admin.Select(args)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := database.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx := core.ContextWithUser(cmd.Context(), currentUser())
			if err := admin.Reset(ctx, pool, schemas); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %d tables\n", len(schemas))
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the deletion")
	return cmd
}
