package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/brojonat/suiscope/client"
	"github.com/brojonat/suiscope/service/config"
	"github.com/brojonat/suiscope/service/explain"
	"github.com/brojonat/suiscope/service/llm"
	"github.com/brojonat/suiscope/service/sui"
	"github.com/urfave/cli/v2"
)

func cliLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func apiClient(c *cli.Context) (*client.Client, error) {
	serverURL := c.String("server-url")
	if serverURL == "" {
		return nil, fmt.Errorf("server-url is required (set SERVER_URL env var or use --server-url)")
	}
	return client.NewClient(serverURL, nil, cliLogger(c)), nil
}

func identifierArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one transaction digest or explorer URL")
	}
	return c.Args().First(), nil
}

func explanationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "llm",
			Usage: "Also request a natural-language explanation",
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "Explanation mode (full or simple)",
			Value: string(llm.ModeFull),
		},
	}
}

func explainCommand() *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "Explain a transaction through the suiscope server",
		ArgsUsage: "DIGEST_OR_URL",
		Flags: append(explanationFlags(),
			&cli.BoolFlag{
				Name:  "skip-cache",
				Usage: "Bypass the server's translation cache",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Request timeout",
				Value: 2 * time.Minute,
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

			resp, err := api.Explain(ctx, client.ExplainRequest{
				Identifier:         identifier,
				IncludeExplanation: c.Bool("llm"),
				Mode:               string(mode),
				SkipCache:          c.Bool("skip-cache"),
			})
			if err != nil {
				return describeError(err)
			}

			return render(c, resp, func(w io.Writer) {
				printTransaction(w, resp.Transaction)
				printExplanation(w, resp.Explanation)
				if resp.ExplanationError != "" {
					fmt.Fprintf(w, "\nExplanation unavailable: %s\n", resp.ExplanationError)
				}
				if resp.Cached {
					fmt.Fprintf(w, "\n(served from cache)\n")
				}
			})
		},
	}
}

func translateCommand() *cli.Command {
	return &cli.Command{
		Name:      "translate",
		Usage:     "Translate a transaction locally against a Sui RPC node",
		ArgsUsage: "DIGEST_OR_URL",
		Description: `Runs the full explain pipeline in-process. Configuration is read from the
environment exactly as the server reads it (SUI_RPC_URL, INDEXER_URL,
LLM_API_KEY, ...), so no server needs to be running.`,
		Flags: append(explanationFlags(),
			&cli.StringFlag{
				Name:  "rpc-url",
				Usage: "Override SUI_RPC_URL",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log pipeline activity to stderr",
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

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if u := c.String("rpc-url"); u != "" {
				cfg.SuiRPCURL = u
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx := context.Background()
			stack, err := explain.Build(ctx, cfg, nil, cliLogger(c))
			if err != nil {
				return err
			}
			defer stack.Close()

			result, err := stack.Service.Explain(ctx, explain.Request{
				Identifier:         identifier,
				IncludeExplanation: c.Bool("llm"),
				Mode:               mode,
				SkipCache:          true,
			})
			if err != nil {
				return describeError(err)
			}

			return render(c, result, func(w io.Writer) {
				printTransaction(w, result.Transaction)
				printExplanation(w, result.Explanation)
				if result.ExplanationError != "" {
					fmt.Fprintf(w, "\nExplanation unavailable: %s\n", result.ExplanationError)
				}
			})
		},
	}
}

func flowCommand() *cli.Command {
	return &cli.Command{
		Name:      "flow",
		Usage:     "Show the flow graph and steps of a transaction",
		ArgsUsage: "DIGEST_OR_URL",
		Flags:     []cli.Flag{jqFlag()},
		Action: func(c *cli.Context) error {
			identifier, err := identifierArg(c)
			if err != nil {
				return err
			}
			api, err := apiClient(c)
			if err != nil {
				return err
			}

			flow, err := api.GetFlow(context.Background(), identifier)
			if err != nil {
				return describeError(err)
			}

			return render(c, flow, func(w io.Writer) {
				fmt.Fprintf(w, "Transaction %s (%s)\n\n", flow.Digest, flow.Type)
				for _, n := range flow.Flow.Nodes {
					fmt.Fprintf(w, "  [%s] %s: %s\n", n.ID, n.Label, n.Description)
				}
				fmt.Fprintln(w)
				for i, s := range flow.Steps {
					fmt.Fprintf(w, "  %d. %s", i+1, s.Title)
					if s.Amount != "" {
						fmt.Fprintf(w, " (%s)", s.Amount)
					}
					fmt.Fprintln(w)
				}
				if flow.Execution != nil {
					fmt.Fprintf(w, "\n%s\n", flow.Execution.Summary)
				}
			})
		},
	}
}

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Normalize a digest or explorer URL to a Base58 digest",
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

			if c.Bool("json") {
				return outputJSON(c.App.Writer, map[string]string{
					"identifier": identifier,
					"digest":     digest,
				})
			}
			fmt.Fprintln(c.App.Writer, digest)
			return nil
		},
	}
}
