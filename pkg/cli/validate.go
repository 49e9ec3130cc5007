package cli

import (
	"context"

	"github.com/laurel-hq/laurel/pkg/cli/config"
	"github.com/laurel-hq/laurel/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var policyCfg config.Policy
	var rosterCfg config.Roster
	var syncCfg config.Sync

	var flags []cli.Flag
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, rosterCfg.Flags()...)
	flags = append(flags, syncCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the policy file and sync settings, and optionally parse the roster",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if err := syncCfg.Validate(); err != nil {
				return goerr.Wrap(err, "sync settings validation failed")
			}

			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "policy validation failed")
			}
			if policyCfg.Path() == "" {
				logger.Info("No policy file specified, built-in policy is used")
			}
			logger.Info("Policy validation passed",
				"path", policyCfg.Path(),
				"minimum_days", policy.Eligibility.MinimumDaysForEligibility,
				"excluded_titles", len(policy.Eligibility.ExcludedTitles),
				"strategy", policy.VotingGroup.Strategy,
				"fallback", policy.VotingGroup.FallbackStrategy,
			)

			loader, err := rosterCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "roster configuration failed")
			}
			if loader == nil {
				logger.Info("No roster path specified, skipping roster check")
				return nil
			}

			records, err := loader.Load(ctx)
			if err != nil {
				return goerr.Wrap(err, "roster validation failed")
			}
			logger.Info("Roster validation passed",
				"path", loader.Path(),
				"records", len(records),
			)
			return nil
		},
	}
}
