package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/laurel-hq/laurel/pkg/cli/config"
	httpctrl "github.com/laurel-hq/laurel/pkg/controller/http"
	"github.com/laurel-hq/laurel/pkg/metrics"
	"github.com/laurel-hq/laurel/pkg/service/worker"
	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/laurel-hq/laurel/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

type stopper interface {
	Stop()
}

func cmdServe() *cli.Command {
	var addr string
	var runtimeMetrics bool
	var appCfg appConfig
	var authCfg config.Auth

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("LAUREL_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "runtime-metrics",
			Usage:       "Export Go runtime and process metrics on /metrics",
			Value:       true,
			Category:    "Metrics",
			Sources:     cli.EnvVars("LAUREL_RUNTIME_METRICS"),
			Destination: &runtimeMetrics,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server with the background sync and period closing workers",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			if runtimeMetrics {
				reg.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
			}

			authUC, err := authCfg.Configure(ctx, appCfg.directory.TenantID())
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authCfg.IsNoAuthMode() {
				logging.Default().Warn("Running in no-auth mode (development only)", "auth", authCfg)
			}

			uc, repo, err := appCfg.setup(ctx, metrics.New(reg), usecase.WithAuth(authUC))
			if err != nil {
				return err
			}
			defer closeRepository(repo)

			httpOpts := []httpctrl.Options{
				httpctrl.WithMetrics(reg),
			}
			if limit, burst, ok := appCfg.sync.RateLimit(); ok {
				httpOpts = append(httpOpts, httpctrl.WithRateLimit(limit, burst))
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			var workers []stopper
			defer func() {
				for _, w := range workers {
					w.Stop()
				}
			}()

			if appCfg.directory.IsConfigured() && appCfg.sync.Interval() > 0 {
				w := worker.NewSyncWorker(uc.Sync, appCfg.sync.Interval())
				if err := w.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start sync worker")
				}
				workers = append(workers, w)
			} else {
				logging.Default().Info("Scheduled sync disabled")
			}

			if appCfg.sync.CloseInterval() > 0 {
				w := worker.NewPeriodCloser(uc.Voting, appCfg.sync.CloseInterval())
				if err := w.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start period closer")
				}
				workers = append(workers, w)
			}

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				logging.Default().Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}
			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
