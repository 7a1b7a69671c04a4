package main

import (
	"context"
	"fmt"

	"github.com/contentools/reaper/pkg/client"
	"github.com/contentools/reaper/pkg/log"
	"github.com/contentools/reaper/pkg/web"
	cli "github.com/urfave/cli/v3"
)

// selectionFlags describe what to delete. Shared by find and purge.
var selectionFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "content-type",
		Aliases:  []string{"t"},
		Usage:    "Content type to target",
		Required: true,
	},
	&cli.StringFlag{
		Name:     "taxonomy",
		Aliases:  []string{"x"},
		Usage:    "Taxonomy to filter by",
		Required: true,
	},
	&cli.StringFlag{
		Name:    "term-filter",
		Aliases: []string{"f"},
		Usage:   "Case-insensitive substring matched against term name or slug",
	},
	&cli.BoolFlag{
		Name:  "delete-empty-terms",
		Usage: "Delete taxonomy terms left empty once the operation finishes",
	},
}

func FindCommand() *cli.Command {
	return &cli.Command{
		Name:    "find",
		Aliases: []string{"f"},
		Usage:   "Preview the items a selection would delete",
		Flags:   append(append([]cli.Flag{}, apiFlags...), selectionFlags...),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			api := newClient(command)

			result, err := runFind(ctx, api, command)
			if err != nil {
				return err
			}

			printFindResult(result)

			return nil
		},
	}
}

func newClient(command *cli.Command) *client.Client {
	return client.New(
		command.String("api-url"),
		command.String("api-token"),
		command.String("user"),
	)
}

func runFind(ctx context.Context, api *client.Client, command *cli.Command) (*web.FindResponse, error) {
	return api.Find(ctx, web.FindRequest{
		ContentType:      command.String("content-type"),
		Taxonomy:         command.String("taxonomy"),
		TermFilter:       command.String("term-filter"),
		DeleteEmptyTerms: command.Bool("delete-empty-terms"),
	})
}

func printFindResult(result *web.FindResponse) {
	for _, message := range result.Messages {
		fmt.Println(message)
	}

	for _, item := range result.Items {
		fmt.Printf("  %d\t%s\n", item.ID, item.Title)
	}

	fmt.Printf("%s\n", result.Message)
}
