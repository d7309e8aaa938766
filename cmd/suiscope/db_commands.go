package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/brojonat/suiscope/service/db"
	"github.com/brojonat/suiscope/service/sui"
	"github.com/urfave/cli/v2"
)

func rawTransactionCommand() *cli.Command {
	return &cli.Command{
		Name:      "raw",
		Usage:     "Print the archived RPC payload of a transaction",
		ArgsUsage: "DIGEST_OR_URL",
		Action: func(c *cli.Context) error {
			identifier, err := identifierArg(c)
			if err != nil {
				return err
			}
			digest, err := sui.NormalizeDigest(identifier)
			if err != nil {
				return describeError(err)
			}

			store, closer, err := getStore(c)
			if err != nil {
				return err
			}
			defer closer()

			row, err := store.GetRawTransaction(context.Background(), digest)
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("transaction %s is not archived", digest)
			}
			if err != nil {
				return fmt.Errorf("failed to get raw transaction: %w", err)
			}

			if c.Bool("json") {
				return outputJSON(c.App.Writer, json.RawMessage(row.Payload))
			}

			w := c.App.Writer
			fmt.Fprintf(w, "Digest:     %s\n", row.Digest)
			fmt.Fprintf(w, "Sender:     %s\n", row.Sender)
			if row.Checkpoint != nil {
				fmt.Fprintf(w, "Checkpoint: %d\n", *row.Checkpoint)
			}
			fmt.Fprintf(w, "Fetched:    %s\n", row.FetchedAt.Format(time.RFC3339))
			fmt.Fprintf(w, "Payload:    %d bytes (use --json to print it)\n", len(row.Payload))
			return nil
		},
	}
}

func listTransactionsCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Usage:   "List archived digests sent by an address",
		Aliases: []string{"ls"},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "sender",
				Aliases:  []string{"s"},
				Usage:    "Sender address",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of digests",
				Value:   50,
			},
		},
		Action: func(c *cli.Context) error {
			store, closer, err := getStore(c)
			if err != nil {
				return err
			}
			defer closer()

			digests, err := store.ListRawTransactionsBySender(context.Background(), c.String("sender"), int32(c.Int("limit")))
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			if c.Bool("json") {
				return outputJSON(c.App.Writer, digests)
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tDIGEST")
			for i, d := range digests {
				fmt.Fprintf(w, "%d\t%s\n", i+1, d)
			}
			w.Flush()
			fmt.Fprintf(c.App.Writer, "\nTotal: %d transaction(s)\n", len(digests))
			return nil
		},
	}
}

func countTransactionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "count",
		Usage: "Count archived transactions",
		Action: func(c *cli.Context) error {
			store, closer, err := getStore(c)
			if err != nil {
				return err
			}
			defer closer()

			n, err := store.CountRawTransactions(context.Background())
			if err != nil {
				return fmt.Errorf("failed to count transactions: %w", err)
			}
			if c.Bool("json") {
				return outputJSON(c.App.Writer, map[string]int64{"count": n})
			}
			fmt.Fprintf(c.App.Writer, "%d archived transaction(s)\n", n)
			return nil
		},
	}
}

func deleteTransactionCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Remove a transaction from the archive",
		Aliases:   []string{"rm"},
		ArgsUsage: "DIGEST_OR_URL",
		Action: func(c *cli.Context) error {
			identifier, err := identifierArg(c)
			if err != nil {
				return err
			}
			digest, err := sui.NormalizeDigest(identifier)
			if err != nil {
				return describeError(err)
			}

			store, closer, err := getStore(c)
			if err != nil {
				return err
			}
			defer closer()

			err = store.DeleteRawTransaction(context.Background(), digest)
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("transaction %s is not archived", digest)
			}
			if err != nil {
				return fmt.Errorf("failed to delete raw transaction: %w", err)
			}

			if c.Bool("json") {
				return outputJSON(c.App.Writer, map[string]string{"deleted": digest})
			}
			fmt.Fprintf(c.App.Writer, "✓ Deleted %s\n", digest)
			return nil
		},
	}
}

// getStore creates a database store from the CLI context.
func getStore(c *cli.Context) (*db.Store, func(), error) {
	dbURL := c.String("database-url")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return nil, nil, fmt.Errorf("database-url is required (set DATABASE_URL env var or use --database-url)")
	}

	pool, err := db.Connect(context.Background(), dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db.NewStore(pool, nil), pool.Close, nil
}
