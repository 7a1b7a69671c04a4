package main

import (
	"context"
	"os"

	"github.com/contentools/reaper/pkg/cmd"
	"github.com/contentools/reaper/pkg/log"
	"github.com/contentools/reaper/pkg/models"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9191

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "reaper-api",
		Usage:                 "Bulk content deletion API server",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Postgres connection URL for the content store and activity log",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis connection URL for operation state",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:     "registry-file",
				Usage:    "Path to the content-type registry JSON file",
				Required: true,
				Sources:  cli.EnvVars("REGISTRY_FILE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka broker list for operation events",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "api-token",
				Usage:   "Static bearer token required on every API call",
				Sources: cli.EnvVars("API_TOKEN"),
			},
			&cli.IntFlag{
				Name:    "log-retention-days",
				Usage:   "Activity log retention in days (0 keeps logs forever)",
				Value:   models.DefaultRetentionDays,
				Sources: cli.EnvVars("LOG_RETENTION_DAYS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Reaper API")

			registry, err := cmd.NewRegistry(logger, command.String("registry-file"))
			if err != nil {
				return err
			}

			stores, err := cmd.NewStores(ctx, logger, command.String("database-url"), command.String("redis-url"))
			if err != nil {
				return err
			}

			defer func() {
				err := stores.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close stores", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("kafka-brokers"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(
				logger,
				stores,
				registry,
				eventBus,
				command.String("api-token"),
				command.Int("log-retention-days"),
			)

			return api.Start(ctx, command.Int("port"))
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		logger.Error("Reaper API exited with error", "error", err)
		os.Exit(1)
	}
}
