package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRunCommand starts the daemon: scheduled scraping, scheduled cleanup,
// and the metrics endpoint, until SIGINT/SIGTERM.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the synchronization daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := buildApp(ctx, opts)
			if err != nil {
				return err
			}
			defer app.Store.Close()

			if app.Config.Metrics.Addr != "" {
				go func() {
					if err := app.Metrics.Serve(ctx, app.Config.Metrics.Addr); err != nil {
						app.Log.Error("metrics server failed", "err", err)
					}
				}()
				app.Log.Info("serving metrics", "addr", app.Config.Metrics.Addr)
			}

			app.Sched.StartAll(ctx)
			for _, j := range app.Sched.Status() {
				app.Log.Info("job registered", "job", j.Name, "state", j.State, "interval", j.Interval)
			}
			<-ctx.Done()
			app.Log.Info("shutting down")
			app.Sched.StopAll()
			return nil
		},
	}
}
