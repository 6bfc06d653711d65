package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oshokin/release-installer/internal/service/executor"
)

// listCmd prints the release feed.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetch and print the published releases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		app, err := newApplication(ctx, settings, executor.NewLoop())
		if err != nil {
			return err
		}

		if err = app.controller.Refresh(ctx); err != nil {
			return err
		}

		latest, _ := app.controller.LatestIndex()

		out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(out, "INDEX\tVERSION\tRELEASED\tSTATUS")

		for i, descriptor := range app.controller.Snapshot().Descriptors() {
			status := app.controller.Compare(i).String()
			if i == latest {
				status += ", latest"
			}

			_, _ = fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", i, descriptor.Version, descriptor.ReleaseDate, status)
		}

		_, _ = fmt.Fprintf(out, "\ninstalled: %s\n", app.controller.InstalledLabel())

		return out.Flush()
	},
}
