package cli

import (
	"context"

	"github.com/laurel-hq/laurel/pkg/cli/config"
	"github.com/laurel-hq/laurel/pkg/domain/interfaces"
	"github.com/laurel-hq/laurel/pkg/metrics"
	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/laurel-hq/laurel/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// appConfig groups the settings every command that touches employees needs
type appConfig struct {
	repo      config.Repository
	directory config.Directory
	roster    config.Roster
	policy    config.Policy
	slack     config.Slack
	sync      config.Sync
}

func (x *appConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.directory.Flags()...)
	flags = append(flags, x.roster.Flags()...)
	flags = append(flags, x.policy.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	flags = append(flags, x.sync.Flags()...)
	return flags
}

// setup builds the repository and the use cases. The caller closes the
// returned repository.
func (x *appConfig) setup(ctx context.Context, m *metrics.Metrics, extra ...usecase.Option) (*usecase.UseCases, interfaces.Repository, error) {
	logger := logging.From(ctx)

	if err := x.sync.Validate(); err != nil {
		return nil, nil, err
	}

	policy, err := x.policy.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load policy")
	}

	dir, err := x.directory.Configure(ctx)
	if err != nil {
		return nil, nil, err
	}
	if dir == nil {
		logger.Warn("Directory is not configured, syncs are disabled")
	}

	rosterLoader, err := x.roster.Configure(ctx)
	if err != nil {
		return nil, nil, err
	}
	if rosterLoader == nil {
		logger.Info("Roster path not configured, employees come from the directory only")
	}

	notifier, err := x.slack.Configure()
	if err != nil {
		return nil, nil, err
	}

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}

	opts := []usecase.Option{
		usecase.WithPolicy(policy),
		usecase.WithMetrics(m),
	}
	if dir != nil {
		opts = append(opts, usecase.WithDirectory(dir))
	}
	if rosterLoader != nil {
		opts = append(opts, usecase.WithRoster(rosterLoader))
	}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
	}
	opts = append(opts, x.sync.UseCaseOptions()...)
	opts = append(opts, extra...)

	logger.Info("Application configured",
		"repository", x.repo,
		"directory", x.directory,
		"roster", x.roster,
		"slack", x.slack,
		"sync", x.sync,
	)

	return usecase.New(repo, opts...), repo, nil
}

func closeRepository(repo interfaces.Repository) {
	if err := repo.Close(); err != nil {
		logging.Default().Error("failed to close repository", "error", err.Error())
	}
}
