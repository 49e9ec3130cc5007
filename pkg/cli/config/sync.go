package config

import (
	"log/slog"
	"time"

	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Sync holds the scheduling and pacing of background jobs and of the
// endpoints that trigger them
type Sync struct {
	interval       time.Duration
	closeInterval  time.Duration
	pageSize       int
	timeout        time.Duration
	rateLimitEvery time.Duration
	rateLimitBurst int
}

func (x *Sync) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "sync-interval",
			Usage:       "Interval of the scheduled full sync (0 disables it)",
			Value:       24 * time.Hour,
			Category:    "Sync",
			Sources:     cli.EnvVars("LAUREL_SYNC_INTERVAL"),
			Destination: &x.interval,
		},
		&cli.DurationFlag{
			Name:        "period-close-interval",
			Usage:       "Interval for closing expired voting periods (0 disables it)",
			Value:       time.Hour,
			Category:    "Sync",
			Sources:     cli.EnvVars("LAUREL_PERIOD_CLOSE_INTERVAL"),
			Destination: &x.closeInterval,
		},
		&cli.IntFlag{
			Name:        "sync-page-size",
			Usage:       "Directory page size",
			Value:       usecase.DefaultPageSize,
			Category:    "Sync",
			Sources:     cli.EnvVars("LAUREL_SYNC_PAGE_SIZE"),
			Destination: &x.pageSize,
		},
		&cli.DurationFlag{
			Name:        "sync-timeout",
			Usage:       "Timeout of each external call made by a sync",
			Value:       usecase.DefaultSyncTimeout,
			Category:    "Sync",
			Sources:     cli.EnvVars("LAUREL_SYNC_TIMEOUT"),
			Destination: &x.timeout,
		},
		&cli.DurationFlag{
			Name:        "rate-limit-every",
			Usage:       "Minimum spacing of sync and nomination requests per caller (0 disables limiting)",
			Value:       2 * time.Second,
			Category:    "Sync",
			Sources:     cli.EnvVars("LAUREL_RATE_LIMIT_EVERY"),
			Destination: &x.rateLimitEvery,
		},
		&cli.IntFlag{
			Name:        "rate-limit-burst",
			Usage:       "Requests a caller may send before limiting applies",
			Value:       5,
			Category:    "Sync",
			Sources:     cli.EnvVars("LAUREL_RATE_LIMIT_BURST"),
			Destination: &x.rateLimitBurst,
		},
	}
}

func (x Sync) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("interval", x.interval),
		slog.Duration("close_interval", x.closeInterval),
		slog.Int("page_size", x.pageSize),
		slog.Duration("timeout", x.timeout),
		slog.Duration("rate_limit_every", x.rateLimitEvery),
		slog.Int("rate_limit_burst", x.rateLimitBurst),
	)
}

// Validate rejects values the directory or the scheduler cannot use
func (x *Sync) Validate() error {
	if x.pageSize < 1 || x.pageSize > 999 {
		return goerr.Wrap(ErrInvalidConfig, "sync page size must be between 1 and 999",
			goerr.V(FlagKey, "sync-page-size"), goerr.V(ValueKey, x.pageSize))
	}
	if x.interval < 0 || x.closeInterval < 0 || x.timeout < 0 {
		return goerr.Wrap(ErrInvalidConfig, "durations must not be negative")
	}
	if x.rateLimitEvery > 0 && x.rateLimitBurst < 1 {
		return goerr.Wrap(ErrInvalidConfig, "rate limit burst must be at least 1",
			goerr.V(FlagKey, "rate-limit-burst"), goerr.V(ValueKey, x.rateLimitBurst))
	}
	return nil
}

// UseCaseOptions returns the sync pacing options
func (x *Sync) UseCaseOptions() []usecase.Option {
	return []usecase.Option{
		usecase.WithPageSize(x.pageSize),
		usecase.WithSyncTimeout(x.timeout),
	}
}

// Interval returns the scheduled full sync interval, 0 when disabled
func (x *Sync) Interval() time.Duration {
	return x.interval
}

// CloseInterval returns the period closer interval, 0 when disabled
func (x *Sync) CloseInterval() time.Duration {
	return x.closeInterval
}

// RateLimit returns the per-caller limit. ok is false when limiting is off.
func (x *Sync) RateLimit() (limit rate.Limit, burst int, ok bool) {
	if x.rateLimitEvery <= 0 {
		return 0, 0, false
	}
	return rate.Every(x.rateLimitEvery), x.rateLimitBurst, true
}
