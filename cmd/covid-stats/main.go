package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/i474232898/covid-stats/internal/config"
	"github.com/i474232898/covid-stats/internal/logging"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	app := &cli.Command{
		Name:  "covid-stats",
		Usage: "Fetch monthly COVID-19 reports and serve a dashboard over them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Log level (debug, info, warn, error)",
				Value:       cfg.LogLevel,
				Sources:     cli.EnvVars("LOG_LEVEL"),
				Destination: &cfg.LogLevel,
			},
			&cli.StringFlag{
				Name:        "csv",
				Usage:       "Path of the CSV snapshot",
				Value:       cfg.CSVFilePath,
				Sources:     cli.EnvVars("CSV_FILE_PATH"),
				Destination: &cfg.CSVFilePath,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logging.Setup(cfg.LogLevel, os.Stdout)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdFetch(cfg),
			cmdServe(cfg),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.WithError(err).Fatal("covid-stats failed")
	}
}
