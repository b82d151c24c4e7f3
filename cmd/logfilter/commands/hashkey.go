package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coffersTech/logfilter/internal/pkg/security"
)

func newHashKeyCmd(e *env) *cobra.Command {
	var generate bool

	cmd := &cobra.Command{
		Use:   "hash-key [key]",
		Short: "Print the bcrypt hash of an API key for server.api_key_hash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			switch {
			case generate && len(args) == 0:
				k, err := security.GenerateKey()
				if err != nil {
					return err
				}
				key = k
				fmt.Fprintf(cmd.OutOrStdout(), "key:  %s\n", key)
			case len(args) == 1 && !generate:
				key = args[0]
			default:
				return errors.New("pass exactly one of <key> or --generate")
			}

			hash, err := security.HashKey(key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hash: %s\n", hash)
			e.logger.Debug("hashed api key")
			return nil
		},
	}

	cmd.Flags().BoolVar(&generate, "generate", false, "Generate a random key instead of reading one")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
