package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"eventsync/internal/orchestrator"
)

// NewScrapeCommand runs one orchestrator pass: all sources, or a single
// named one.
func NewScrapeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape [source]",
		Short: "Run one scrape pass across all sources, or one source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := buildApp(ctx, opts)
			if err != nil {
				return err
			}
			defer app.Store.Close()

			var stats orchestrator.Stats
			if len(args) == 1 {
				stats, err = app.Orch.RunOne(ctx, args[0])
			} else {
				stats, err = app.Orch.RunAll(ctx)
			}
			if err != nil {
				return err
			}

			b, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}
