package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// NewStatusCommand prints per-status event counts and the configured
// source order.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store counts and configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := buildApp(ctx, opts)
			if err != nil {
				return err
			}
			defer app.Store.Close()

			counts, err := app.Store.CountByStatus(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sources: %s\n", strings.Join(app.Orch.Sources(), ", "))

			statuses := make([]string, 0, len(counts))
			for s := range counts {
				statuses = append(statuses, s)
			}
			sort.Strings(statuses)
			var total int64
			for _, s := range statuses {
				fmt.Fprintf(out, "%-10s %d\n", s, counts[s])
				total += counts[s]
			}
			fmt.Fprintf(out, "%-10s %d\n", "total", total)
			return nil
		},
	}
}
