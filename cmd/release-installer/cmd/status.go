package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/release-installer/internal/service/executor"
)

// statusCmd reports the installed version and whether an update exists.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the installed version and whether a newer release exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		app, err := newApplication(ctx, settings, executor.NewLoop())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "installed: %s\n", app.controller.InstalledLabel())

		if err = app.controller.Refresh(ctx); err != nil {
			return err
		}

		if update, ok := app.controller.UpdateAvailable(); ok {
			_, _ = fmt.Fprintf(out, "update available: %s (released on %s)\n", update.Version, update.ReleaseDate)
			return nil
		}

		if latest, ok := app.controller.LatestIndex(); ok {
			descriptor, _ := app.controller.Snapshot().At(latest)
			_, _ = fmt.Fprintf(out, "latest published: %s\n", descriptor.Version)
		}

		_, _ = fmt.Fprintln(out, "no update available")

		return nil
	},
}
