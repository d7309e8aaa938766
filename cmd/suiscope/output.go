package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/brojonat/suiscope/client"
	"github.com/brojonat/suiscope/service/explain"
	"github.com/brojonat/suiscope/service/llm"
	"github.com/brojonat/suiscope/service/translate"
	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"
)

func jqFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "jq",
		Usage: "jq expression applied to the JSON output (e.g. '.transaction.type')",
	}
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// outputJQ runs query against the JSON form of v and writes every result.
// String results are written raw, everything else as compact JSON.
func outputJQ(w io.Writer, query string, v interface{}) error {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return fmt.Errorf("failed to compile jq expression: %w", err)
	}

	// gojq only understands the generic JSON shapes
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to unmarshal output: %w", err)
	}

	iter := code.Run(generic)
	for {
		result, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := result.(error); ok {
			return fmt.Errorf("jq evaluation failed: %w", err)
		}
		if s, ok := result.(string); ok {
			fmt.Fprintln(w, s)
			continue
		}
		line, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal jq result: %w", err)
		}
		fmt.Fprintln(w, string(line))
	}
}

// render picks jq, JSON or the human form for v.
func render(c *cli.Context, v interface{}, pretty func(io.Writer)) error {
	w := c.App.Writer
	if q := c.String("jq"); q != "" {
		return outputJQ(w, q, v)
	}
	if c.Bool("json") {
		return outputJSON(w, v)
	}
	pretty(w)
	return nil
}

func printTransaction(w io.Writer, tx *translate.TranslatedTransaction) {
	fmt.Fprintf(w, "%s\n\n", tx.Summary)
	fmt.Fprintf(w, "  Digest:  %s\n", tx.Digest)
	fmt.Fprintf(w, "  Type:    %s\n", tx.Type)
	fmt.Fprintf(w, "  Status:  %s\n", tx.Status)
	if tx.Error != "" {
		fmt.Fprintf(w, "  Error:   %s\n", tx.Error)
	}
	if tx.Protocol != "" {
		fmt.Fprintf(w, "  Protocol: %s\n", tx.Protocol)
	}
	fmt.Fprintf(w, "  Sender:  %s\n", tx.Sender.Address)
	for _, r := range tx.Recipients {
		label := r.Display
		if r.Label != "" {
			label = r.Label
		}
		fmt.Fprintf(w, "  To:      %s (%s)\n", r.Address, label)
	}
	fmt.Fprintf(w, "  Gas:     %s\n", tx.GasSummary)

	if len(tx.Assets) > 0 {
		fmt.Fprintf(w, "\nAssets:\n")
		for _, a := range tx.Assets {
			fmt.Fprintf(w, "  %-3s %g %s", a.Direction, a.Display, a.Symbol)
			if a.USDValue > 0 {
				fmt.Fprintf(w, " (~$%.2f)", a.USDValue)
			}
			fmt.Fprintln(w)
		}
	}

	if len(tx.Steps) > 0 {
		fmt.Fprintf(w, "\nSteps:\n")
		for i, s := range tx.Steps {
			fmt.Fprintf(w, "  %d. %s: %s\n", i+1, s.Title, s.Description)
		}
	}

	fmt.Fprintf(w, "\n%s\n", tx.PlainEnglish)
}

func printExplanation(w io.Writer, e *llm.Explanation) {
	if e == nil {
		return
	}
	fmt.Fprintf(w, "\nExplanation (%s):\n", e.Mode)
	if e.Partial {
		fmt.Fprintf(w, "  (recovered from a malformed model response)\n")
	}
	fmt.Fprintf(w, "  %s\n", e.Overview)
	if e.PlainEnglish.Simple != "" {
		fmt.Fprintf(w, "  %s\n", e.PlainEnglish.Simple)
	}
	for _, line := range e.DetailedFlow {
		fmt.Fprintf(w, "  - %s\n", line)
	}
}

// describeError adds the remedy of a classified failure to err.
func describeError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Remedy == "" {
			return err
		}
		return fmt.Errorf("%s\n  %s", apiErr.Message, apiErr.Remedy)
	}

	kind := explain.KindOf(err)
	if kind == explain.KindInternal {
		return err
	}
	return fmt.Errorf("%s\n  %s\n  (%v)", explain.Message(kind), explain.Remedy(kind), err)
}
