package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCleanupCommand runs the retention sweep once.
func NewCleanupCommand(opts *RootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete old inactive, non-imported events",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := buildApp(ctx, opts)
			if err != nil {
				return err
			}
			defer app.Store.Close()

			if days <= 0 {
				days = app.Config.Scheduler.CleanupDays
			}
			n, err := app.Orch.Cleanup(ctx, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d events older than %d days\n", n, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "age cutoff in days (default from config)")
	return cmd
}
