package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oshokin/release-installer/internal/domain/release"
	"github.com/oshokin/release-installer/internal/logger"
	"github.com/oshokin/release-installer/internal/service/executor"
	"github.com/oshokin/release-installer/internal/service/privilege"
)

var (
	// installLatest installs the highest version instead of an index.
	installLatest bool

	errIndexOrLatest = errors.New("pass either a release index or --latest")
	errNoReleases    = errors.New("the feed has no installable release")

	// installCmd installs one release through the executor.
	installCmd = &cobra.Command{
		Use:   "install [index]",
		Short: "Install the release at the given feed index, or the latest one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if installLatest == (len(args) == 1) {
				return errIndexOrLatest
			}

			ctx, stop := signalContext()
			defer stop()

			loop := executor.NewLoop()

			app, err := newApplication(ctx, settings, loop)
			if err != nil {
				return err
			}

			if err = app.controller.Refresh(ctx); err != nil {
				return err
			}

			index, ok := app.controller.LatestIndex()
			if !installLatest {
				if index, err = strconv.Atoi(args[0]); err != nil {
					return fmt.Errorf("parse index %q: %w", args[0], err)
				}
			} else if !ok {
				return errNoReleases
			}

			if err = app.controller.Select(index); err != nil {
				return err
			}

			var outcome release.Outcome

			handle, err := app.controller.Install(ctx, func(result release.Outcome) {
				outcome = result
				loop.Stop()
			})
			if errors.Is(err, privilege.ErrRelaunched) {
				logger.Info(ctx, "Continuing in the elevated installer")
				return nil
			}

			if err != nil {
				return err
			}

			if err = loop.Run(ctx); err != nil {
				logger.Warn(ctx, "Interrupted, waiting for the running install to finish")
				app.executor.Wait()

				return err
			}

			if !outcome.Succeeded {
				return fmt.Errorf("install %s failed (%s): %w",
					handle.Descriptor().Version, release.Classify(outcome.Err), outcome.Err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Installed version %s into %s\n",
				handle.Descriptor().Version, settings.Install.DestinationDir)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	installCmd.Flags().BoolVar(&installLatest, "latest", false, "install the highest published version")
}
