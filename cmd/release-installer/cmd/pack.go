package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/release-installer/internal/service/packager"
)

//nolint:gochecknoglobals // Flag storage for the pack command.
var packOptions packager.Options

// packCmd prepares a release package and the matching feed row.
var packCmd = &cobra.Command{
	Use:   "pack [version] [file...]",
	Short: "Zip release files and append the release to a local feed",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		options := packOptions
		options.Version = args[0]
		options.Files = args[1:]

		return packager.Run(ctx, &options)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	packCmd.Flags().StringVar(&packOptions.BaseURL, "base-url", "", "URL of the folder the package is uploaded to")
	packCmd.Flags().StringVar(&packOptions.BaseDir, "base-dir", ".", "directory file names are relative to")
	packCmd.Flags().StringVarP(&packOptions.Output, "output", "o", "", "package path (default <version>.zip)")
	packCmd.Flags().StringVar(&packOptions.FeedPath, "feed", "releases.csv", "CSV feed to append the release to")
	packCmd.Flags().StringVar(&packOptions.ReleaseDate, "date", "", "release date (default today)")
}
