package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/coffersTech/logfilter/internal/explain"
	"github.com/coffersTech/logfilter/internal/pkg/filterql"
)

func newParseCmd(e *env) *cobra.Command {
	var (
		modeText string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "parse <query>",
		Short: "Parse a query and print its tree",
		Long: `Parse a query and print its debug rendering, for example

  $ logfilter parse 'service:tuna*'
  phrase (lit (service) : op (comp (lit (tuna), wild)))

Diagnostics are printed as warnings. The exit status is 0 even when the
query has problems.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := filterql.ParseMode(modeText)
			if err != nil {
				return err
			}
			opts := e.parserOptions()
			opts.Mode = mode
			q := opts.Parse(args[0])

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(explain.Build(q))
			}

			fmt.Fprintln(cmd.OutOrStdout(), q.String())
			printWarnings(cmd, q)
			return nil
		},
	}

	cmd.Flags().StringVar(&modeText, "mode", string(filterql.ModeAuto), "Grammar entry point (auto|value|operation|phrase)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print tokens, tree and diagnostics as JSON")
	return cmd
}

// printWarnings writes each diagnostic with a caret under its position.
func printWarnings(cmd *cobra.Command, q *filterql.Query) {
	errs := q.Errors()
	if len(errs) == 0 {
		return
	}

	w := cmd.ErrOrStderr()
	for _, err := range errs {
		fmt.Fprintf(w, "warning: %s\n", err.Message)
		fmt.Fprintf(w, "  %s\n", strconv.Quote(q.Source))
		// one column for the opening quote of the quoted source
		fmt.Fprintf(w, "  %*s^ position %d\n", quotedWidth(q.Source[:err.Position])+1, "", err.Position)
	}
	fmt.Fprintln(w, "filter may not behave as expected")
}

func quotedWidth(s string) int {
	q := strconv.Quote(s)
	return len([]rune(q)) - 2
}

func newTokensCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <query>",
		Short: "Print the token stream of a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := filterql.Tokenize(args[0])
			for _, tok := range explain.Tokens(args[0], c.Tokens()) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %3d %3d  %s\n", tok.Kind, tok.Start, tok.Length, strconv.Quote(tok.Text))
			}
			e.logger.Debug("tokenized query", "tokens", c.Len())
			return nil
		},
	}
}
