package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/brojonat/suiscope/client"
	"github.com/brojonat/suiscope/service/llm"
	"github.com/urfave/cli/v2"
)

func asyncStartCommand() *cli.Command {
	return &cli.Command{
		Name:      "start",
		Usage:     "Start a background explain workflow",
		ArgsUsage: "DIGEST_OR_URL",
		Flags: append(explanationFlags(),
			&cli.BoolFlag{
				Name:  "wait",
				Usage: "Poll until the workflow finishes and print its result",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Polling interval with --wait",
				Value: 2 * time.Second,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up waiting after this long",
				Value: 5 * time.Minute,
			},
			jqFlag(),
		),
		Action: func(c *cli.Context) error {
			identifier, err := identifierArg(c)
			if err != nil {
				return err
			}
			mode, err := llm.ParseMode(c.String("mode"))
			if err != nil {
				return err
			}
			api, err := apiClient(c)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()

			job, err := api.StartAsync(ctx, client.ExplainRequest{
				Identifier:         identifier,
				IncludeExplanation: c.Bool("llm"),
				Mode:               string(mode),
			})
			if err != nil {
				return describeError(err)
			}

			if !c.Bool("wait") {
				return render(c, job, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Workflow started\n")
					fmt.Fprintf(w, "  Workflow ID: %s\n", job.WorkflowID)
					fmt.Fprintf(w, "  Digest:      %s\n", job.Digest)
					fmt.Fprintf(w, "  Status URL:  %s\n", job.StatusURL)
				})
			}

			status, err := api.AwaitAsync(ctx, job.WorkflowID, c.Duration("interval"))
			if err != nil {
				return describeError(err)
			}
			return renderAsyncStatus(c, status)
		},
	}
}

func asyncStatusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show the state of an explain workflow",
		ArgsUsage: "WORKFLOW_ID",
		Flags:     []cli.Flag{jqFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one workflow ID")
			}
			api, err := apiClient(c)
			if err != nil {
				return err
			}

			status, err := api.GetAsync(context.Background(), c.Args().First())
			if err != nil {
				return describeError(err)
			}
			return renderAsyncStatus(c, status)
		},
	}
}

func renderAsyncStatus(c *cli.Context, status *client.AsyncStatus) error {
	return render(c, status, func(w io.Writer) {
		fmt.Fprintf(w, "Workflow %s: %s\n", status.WorkflowID, status.Status)
		if status.StartedAt != nil {
			fmt.Fprintf(w, "  Started: %s\n", status.StartedAt.Format(time.RFC3339))
		}
		if status.Error != "" {
			fmt.Fprintf(w, "  Error:   %s\n", status.Error)
		}
		if status.Result == nil || status.Result.Transaction == nil {
			return
		}
		fmt.Fprintln(w)
		printTransaction(w, status.Result.Transaction)
		printExplanation(w, status.Result.Explanation)
		if status.Result.ExplanationError != "" {
			fmt.Fprintf(w, "\nExplanation unavailable: %s\n", status.Result.ExplanationError)
		}
	})
}
