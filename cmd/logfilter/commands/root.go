package commands

import (
	"github.com/spf13/cobra"

	"github.com/coffersTech/logfilter/internal/config"
	"github.com/coffersTech/logfilter/internal/log"
	"github.com/coffersTech/logfilter/internal/pkg/filterql"
)

// Version is set at build time with -ldflags "-X ...commands.Version=...".
var Version = "0.1.0-dev"

// env is what the subcommands share once the root has loaded the config.
type env struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger log.Logger
}

func (e *env) parserOptions() filterql.Options {
	return filterql.Options{MaxDepth: e.cfg.Parser.MaxDepth}
}

// NewRootCmd builds the logfilter command tree.
func NewRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "logfilter",
		Short: "Parse, inspect and serve log filter queries",
		Long: `logfilter parses filter queries such as

  service:api* and worker
  message:(timeout or "connection reset")

and reports their structure and diagnostics. Malformed input never fails:
problems are reported as warnings next to a best-effort parse.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(e.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = e.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = e.logFormat
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := log.NewLogger(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.logger = logger
			return nil
		},
	}

	root.PersistentFlags().StringVar(&e.configPath, "config", "", "Path to a TOML config file")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", log.LogLevelInfo, "Log level (debug|info|error)")
	root.PersistentFlags().StringVar(&e.logFormat, "log-format", log.LogFormatPlain, "Log format (plain|json)")

	root.AddCommand(
		newParseCmd(e),
		newTokensCmd(e),
		newServeCmd(e),
		newHashKeyCmd(e),
		newVersionCmd(),
	)
	return root
}
