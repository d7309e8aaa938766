package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "suiscope",
		Usage: "Explain Sui transactions in plain English",
		Description: `A command-line tool for the suiscope explain service.

Use this CLI to explain transactions through a running server, translate them
locally against an RPC node, inspect the raw transaction archive, and follow
the stream of explained events.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			explainCommand(),
			translateCommand(),
			flowCommand(),
			digestCommand(),
			{
				Name:  "async",
				Usage: "Background explain workflows",
				Subcommands: []*cli.Command{
					asyncStartCommand(),
					asyncStatusCommand(),
				},
			},
			{
				Name:  "db",
				Usage: "Raw transaction archive commands",
				Subcommands: []*cli.Command{
					rawTransactionCommand(),
					listTransactionsCommand(),
					countTransactionsCommand(),
					deleteTransactionCommand(),
				},
			},
			{
				Name:  "events",
				Usage: "NATS explained-event streaming commands",
				Subcommands: []*cli.Command{
					subscribeCommand(),
				},
			},
			{
				Name:  "server",
				Usage: "Server utility commands",
				Subcommands: []*cli.Command{
					healthCommand(),
					versionCommand(),
				},
			},
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server-url",
				Usage:   "suiscope server URL",
				EnvVars: []string{"SERVER_URL"},
				Value:   "http://localhost:8080",
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "nats-url",
				Usage:   "NATS server URL",
				EnvVars: []string{"NATS_URL"},
				Value:   "nats://localhost:4222",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
