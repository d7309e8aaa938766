package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	natspkg "github.com/brojonat/suiscope/service/nats"
	"github.com/brojonat/suiscope/service/translate"
	"github.com/urfave/cli/v2"
)

func subscribeCommand() *cli.Command {
	return &cli.Command{
		Name:  "subscribe",
		Usage: "Stream explained transactions as they are published",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Only show one transaction type (transfer, swap, buy, sell, mint, burn, call, unknown)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Stop after this long (0 runs until interrupted)",
			},
		},
		Action: func(c *cli.Context) error {
			txType := c.String("type")
			if txType != "" && !knownType(txType) {
				return fmt.Errorf("unknown transaction type %q", txType)
			}
			natsURL := c.String("nats-url")
			jsonOutput := c.Bool("json")
			w := c.App.Writer

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if d := c.Duration("timeout"); d > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}

			if !jsonOutput {
				fmt.Fprintf(w, "📡 Subscribing to: %s\n", natspkg.FilterSubject(txType))
				fmt.Fprintf(w, "   NATS: %s\n\n", natsURL)
			}

			received := 0
			err := natspkg.Subscribe(ctx, natsURL, txType, cliLogger(c), func(e *natspkg.ExplainedEvent) {
				received++
				if jsonOutput {
					data, _ := json.Marshal(e)
					fmt.Fprintln(w, string(data))
					return
				}
				fmt.Fprintf(w, "[%s] %s %s\n", e.PublishedAt.Format(time.RFC3339), e.Type, e.Digest)
				fmt.Fprintf(w, "   %s\n", e.Summary)
				if e.TotalUSD > 0 {
					fmt.Fprintf(w, "   ~$%.2f\n", e.TotalUSD)
				}
			})
			if err != nil {
				return err
			}

			if !jsonOutput {
				fmt.Fprintf(w, "\nReceived %d event(s)\n", received)
			}
			return nil
		},
	}
}

func knownType(s string) bool {
	for _, t := range translate.AllTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}
