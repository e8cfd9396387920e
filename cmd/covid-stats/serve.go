package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/m-mizutani/goerr/v2"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	httpapi "github.com/i474232898/covid-stats/internal/api/http"
	"github.com/i474232898/covid-stats/internal/config"
	"github.com/i474232898/covid-stats/internal/covid"
	"github.com/i474232898/covid-stats/internal/store"
)

func cmdServe(cfg *config.AppConfig) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the dashboard over the CSV snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "port",
				Usage:       "HTTP listen port",
				Value:       cfg.Port,
				Sources:     cli.EnvVars("PORT"),
				Destination: &cfg.Port,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			// Read-only table, loaded once for the life of the process.
			table := store.NewTable(cfg.CSVFilePath)
			if _, err := table.Reports(); err != nil {
				return goerr.Wrap(err, "failed to load covid reports")
			}

			service := covid.NewService(table)

			// Basic app configuration
			app := fiber.New(fiber.Config{
				AppName:               "covid-stats",
				DisableStartupMessage: true,
				ReadTimeout:           10 * time.Second,
				WriteTimeout:          10 * time.Second,
				ErrorHandler: func(c *fiber.Ctx, err error) error {
					// Centralized error response
					code := fiber.StatusInternalServerError
					if e, ok := err.(*fiber.Error); ok {
						code = e.Code
					}
					return c.Status(code).JSON(fiber.Map{
						"error":   true,
						"message": err.Error(),
					})
				},
			})

			// Global middleware
			app.Use(logger.New())
			app.Use(recover.New())

			app.Get("/health", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{
					"status":  "ok",
					"service": "covid-stats",
				})
			})

			httpapi.RegisterRoutes(app, service)

			go func() {
				log.WithField("prefix", "http").Infof("dashboard listening on :%s", cfg.Port)
				if err := app.Listen(":" + cfg.Port); err != nil {
					log.WithField("prefix", "http").Errorf("fiber server stopped: %v", err)
				}
			}()

			// Wait for termination signal
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				return goerr.Wrap(err, "error during shutdown")
			}
			return nil
		},
	}
}
