package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oshokin/release-installer/internal/archive"
	"github.com/oshokin/release-installer/internal/logger"
	"github.com/oshokin/release-installer/internal/ui"
)

// tuiLogFilename receives logs while the picker owns the terminal.
const tuiLogFilename = "release-installer.log"

// tuiCmd opens the interactive picker.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Pick and install a release interactively",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		logPath := filepath.Join(os.TempDir(), tuiLogFilename)

		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, archive.DefaultFileMode)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}

		defer func() {
			logger.SetOutput(os.Stdout)

			_ = logFile.Close()
		}()

		logger.SetOutput(logFile)

		home := ui.NewHome()

		app, err := newApplication(ctx, settings, home)
		if err != nil {
			return err
		}

		_, err = ui.Run(ctx, app.controller, home)

		// An install may still be running after the picker closed.
		app.executor.Wait()

		return err
	},
}
