package main

import (
	"context"
	"fmt"

	"github.com/contentools/reaper/pkg/log"
	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence"
	cli "github.com/urfave/cli/v3"
)

func LogsCommand() *cli.Command {
	listFlags := append(append([]cli.Flag{}, apiFlags...),
		&cli.StringFlag{
			Name:  "action",
			Usage: "Filter by action (find, delete_batch, term_cleanup, ...)",
		},
		&cli.StringFlag{
			Name:  "status",
			Usage: "Filter by status (info, success, warning, error)",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of entries",
			Value: 50,
		},
	)

	return &cli.Command{
		Name:  "logs",
		Usage: "Inspect and purge the activity log",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List activity-log entries, newest first",
				Flags: listFlags,
				Action: func(ctx context.Context, command *cli.Command) error {
					log.Setup(command.String("log-level"))

					api := newClient(command)

					result, err := api.Logs(ctx, persistence.LogFilter{
						Action: models.LogAction(command.String("action")),
						Status: models.LogStatus(command.String("status")),
						Limit:  command.Int("limit"),
					})
					if err != nil {
						return err
					}

					for _, entry := range result.Entries {
						fmt.Printf("%s  %-14s %-8s %s\n",
							entry.CreatedAt.Format("2006-01-02 15:04:05"), entry.Action, entry.Status, entry.Summary)
					}

					fmt.Printf("%d entries\n", result.Count)

					return nil
				},
			},
			{
				Name:  "purge",
				Usage: "Remove entries older than the server's retention period",
				Flags: apiFlags,
				Action: func(ctx context.Context, command *cli.Command) error {
					log.Setup(command.String("log-level"))

					api := newClient(command)

					removed, err := api.PurgeLogs(ctx)
					if err != nil {
						return err
					}

					fmt.Printf("Removed %d log entries\n", removed)

					return nil
				},
			},
		},
	}
}
