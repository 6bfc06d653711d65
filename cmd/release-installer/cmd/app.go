package cmd

import (
	"context"

	"github.com/oshokin/release-installer/internal/config"
	"github.com/oshokin/release-installer/internal/domain/release"
	"github.com/oshokin/release-installer/internal/repository/installed"
	"github.com/oshokin/release-installer/internal/service/catalog"
	"github.com/oshokin/release-installer/internal/service/controller"
	"github.com/oshokin/release-installer/internal/service/executor"
	"github.com/oshokin/release-installer/internal/service/installer"
	"github.com/oshokin/release-installer/internal/service/privilege"
	"github.com/oshokin/release-installer/internal/transport/fetcher"
)

// application bundles the services wired from the configuration.
type application struct {
	executor   *executor.Executor
	controller *controller.Controller
}

// newApplication wires every service; completions are delivered to home.
func newApplication(ctx context.Context, cfg *config.Config, home executor.Home) (*application, error) {
	store, err := installed.Open(cfg.InstalledVersion)
	if err != nil {
		return nil, err
	}

	httpFetcher := fetcher.New(fetcher.WithCallTimeout(cfg.HTTP.Timeout))

	releases := catalog.New(httpFetcher, catalog.Options{
		FeedURL:      cfg.Feed.URL,
		HasHeaderRow: cfg.Feed.HasHeaderRow,
	})

	manager := installer.New(httpFetcher, installer.Options{
		TerminateRunning: cfg.Install.TerminateRunning,
		StagedExtraction: cfg.Install.StagedExtraction,
	})

	exec := executor.New(manager, home)

	ctrl := controller.New(
		releases,
		exec,
		privilege.New(cfg.Install.RequireElevation),
		store,
		controller.Options{
			Target: release.Target{
				DestinationDir:     cfg.Install.DestinationDir,
				LegacyArtifactName: cfg.Install.LegacyArtifactName,
			},
			VersionKey:      cfg.InstalledVersion.Key,
			RecordOnSuccess: cfg.InstalledVersion.RecordOnSuccess,
		},
	)

	ctrl.ReloadInstalled(ctx)

	return &application{
		executor:   exec,
		controller: ctrl,
	}, nil
}
