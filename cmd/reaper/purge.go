package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/contentools/reaper/pkg/log"
	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/scheduler"
	cli "github.com/urfave/cli/v3"
)

func PurgeCommand() *cli.Command {
	flags := append(append([]cli.Flag{}, apiFlags...), selectionFlags...)
	flags = append(flags,
		&cli.IntFlag{
			Name:    "batch-size",
			Aliases: []string{"b"},
			Usage:   "Items deleted per batch (1-1000)",
			Value:   models.DefaultBatchSize,
		},
		&cli.DurationFlag{
			Name:  "pause",
			Usage: "Pause between batches (0-60s)",
			Value: 0,
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Preview only, dispatch no deletions",
			Value: true,
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "Skip the interactive confirmation prompt",
		},
	)

	return &cli.Command{
		Name:    "purge",
		Aliases: []string{"p"},
		Usage:   "Find and permanently delete the matching items in batches",
		Flags:   flags,
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			api := newClient(command)

			found, err := runFind(ctx, api, command)
			if err != nil {
				return err
			}

			printFindResult(found)

			if found.Count == 0 {
				return nil
			}

			ids := make([]int64, 0, found.Count)
			for _, item := range found.Items {
				ids = append(ids, item.ID)
			}

			opts := scheduler.Options{
				BatchSize: command.Int("batch-size"),
				Pause:     command.Duration("pause"),
				DryRun:    command.Bool("dry-run"),
				Confirm:   confirmGate(command.Bool("yes")),
				Progress:  printProgress,
			}

			sched := scheduler.NewScheduler(api, log.WithModule("cli"))

			totals, err := sched.Run(ctx, ids, opts)
			if err != nil {
				if errors.Is(err, scheduler.ErrDryRun) {
					fmt.Printf("Dry run: %d items would be deleted. Re-run with --dry-run=false to delete them.\n", found.Count)

					return nil
				}

				if errors.Is(err, scheduler.ErrNotConfirmed) {
					fmt.Println("Aborted, nothing was deleted.")

					return nil
				}

				return err
			}

			fmt.Printf("Done: %d attempted, %d deleted, %d errors in %d batches\n",
				totals.Attempted, totals.Deleted, totals.Errors, totals.Batches)

			if totals.Errors > 0 {
				return fmt.Errorf("%d items failed to delete", totals.Errors)
			}

			return nil
		},
	}
}

// confirmGate prompts before the irreversible first batch. Deletion is
// permanent, there is no trash to restore from.
func confirmGate(skip bool) func(total int) bool {
	return func(total int) bool {
		if skip {
			return true
		}

		fmt.Printf("Permanently delete %d items? This cannot be undone. Type \"yes\" to continue: ", total)

		reader := bufio.NewReader(os.Stdin)

		answer, err := reader.ReadString('\n')
		if err != nil {
			return false
		}

		return strings.TrimSpace(answer) == "yes"
	}
}

func printProgress(p scheduler.Progress) {
	fmt.Printf("Batch %d/%d done, %d of %d items processed (%.0f%%)\n",
		p.Batch, p.TotalBatches, p.Processed, p.Total, p.Percent)
}
