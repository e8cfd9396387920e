package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/i474232898/covid-stats/internal/common"
	"github.com/i474232898/covid-stats/internal/config"
	"github.com/i474232898/covid-stats/internal/covid"
	"github.com/i474232898/covid-stats/internal/covid/providers"
	"github.com/i474232898/covid-stats/internal/scheduler"
	"github.com/i474232898/covid-stats/internal/store"
)

func cmdFetch(cfg *config.AppConfig) *cli.Command {
	var every time.Duration

	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch one report per month and write the CSV snapshot",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "every",
				Usage:       "Keep running and refetch on this interval (0 runs once)",
				Sources:     cli.EnvVars("FETCH_EVERY"),
				Destination: &every,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := log.WithField("prefix", "fetch")

			fetchCfg, err := cfg.Fetch()
			if err != nil {
				return err
			}

			// Shared HTTP client for outbound API calls.
			httpClient := &http.Client{
				Timeout: fetchCfg.HTTPTimeout,
			}
			provider := providers.NewCovidAPIProvider(httpClient, cfg.CovidAPIURL, fetchCfg.Backoff())

			sinks := []covid.Sink{store.NewCSVWriter(cfg.CSVFilePath)}
			if cfg.DatabaseURL != "" {
				pg, err := store.NewPostgresWriter(cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer pg.Close()

				if err := pg.CreateTable(); err != nil {
					return err
				}
				sinks = append(sinks, pg)
			}

			fetcher := covid.NewFetcher(provider, sinks...)
			run := func(ctx context.Context) error {
				result, err := fetcher.Run(ctx, fetchCfg.Start, fetchCfg.End)
				if err != nil {
					return err
				}
				for _, d := range result.Failed {
					logger.Warnf("no data stored for %s", common.FormatDay(d))
				}
				logger.Infof("Data saved to %s", cfg.CSVFilePath)
				return nil
			}

			logger.WithFields(log.Fields{
				"start":   common.FormatDay(fetchCfg.Start),
				"end":     common.FormatDay(fetchCfg.End),
				"api":     cfg.CovidAPIURL,
				"retries": fetchCfg.MaxRetries,
			}).Info("starting fetch")

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if every <= 0 {
				return run(ctx)
			}

			// Scheduler that periodically refetches the whole range.
			sched := scheduler.New(ctx, every, every, run)
			if err := sched.Start(); err != nil {
				return goerr.Wrap(err, "failed to start scheduler")
			}
			defer sched.Stop()

			<-ctx.Done()
			logger.Info("shutting down fetch scheduler")
			return nil
		},
	}
}
