package main

import (
	"context"
	"os"

	"github.com/contentools/reaper/pkg/log"
	cli "github.com/urfave/cli/v3"
)

// apiFlags are shared by every command that talks to the API server.
var apiFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "api-url",
		Usage:   "Base URL of the reaper API server",
		Value:   "http://localhost:9191",
		Sources: cli.EnvVars("REAPER_API_URL"),
	},
	&cli.StringFlag{
		Name:    "api-token",
		Usage:   "Bearer token for the API server",
		Sources: cli.EnvVars("REAPER_API_TOKEN"),
	},
	&cli.StringFlag{
		Name:    "user",
		Usage:   "Acting user the operation is keyed by",
		Value:   "cli",
		Sources: cli.EnvVars("REAPER_USER"),
	},
	&cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level (debug, info, warn, error)",
		Value:   "info",
		Sources: cli.EnvVars("LOG_LEVEL"),
	},
}

func main() {
	command := &cli.Command{
		Name:                  "reaper",
		Usage:                 "Bulk-delete content items by taxonomy term",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			FindCommand(),
			PurgeCommand(),
			LogsCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("cli").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
