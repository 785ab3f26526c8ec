// Package cli provides the command-line interface for sakila-etl.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sakila-etl/internal/cli/commands"
	"github.com/leapstack-labs/sakila-etl/internal/cli/config"
	"github.com/leapstack-labs/sakila-etl/internal/cli/output"
	"github.com/leapstack-labs/sakila-etl/internal/logging"
)

var (
	cfgFile  string
	envFlag  string
	logClose func() error
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// skipSetup lists commands that run without loading configuration.
var skipSetup = map[string]bool{
	"help":                          true,
	"completion":                    true,
	"version":                       true,
	cobra.ShellCompRequestCmd:       true,
	cobra.ShellCompNoDescRequestCmd: true,
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sakila-etl",
		Short: "sakila-etl - Sakila reporting ETL job",
		Long: `sakila-etl extracts three analytical summaries from a Sakila sample
database, reloads them into summary tables and exports them as
tab-separated report files.

Each run clears the reports folder, drops and recreates the summary
tables, runs the payments, film duration and profitable actors queries,
then writes every result to its table and to its report file.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipSetup[cmd.Name()] {
				return nil
			}

			// Load configuration with optional environment override and CLI flags
			cfg, err := config.LoadConfigWithEnv(cfgFile, envFlag, cmd.Flags())
			if err != nil {
				return err
			}

			level := cfg.LogLevel
			if cfg.Verbose {
				level = "debug"
			}
			logger, closeFn, err := logging.Setup(logging.Options{
				File:    cfg.LogFile,
				Level:   level,
				Console: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			closeLogs()
			logClose = closeFn

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)

			// Create and store renderer based on output mode
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
			ctx = output.WithRenderer(ctx, renderer)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					logger.Debug("using config file", "path", configFile)
				}
				if cfg.Environment != "" {
					logger.Debug("using environment", "name", cfg.Environment)
				}
			}

			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return closeLogs()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sakila-etl.yaml)")
	rootCmd.PersistentFlags().StringVarP(&envFlag, "env", "e", "", "Environment to use from the config file (e.g., dev, prod)")
	rootCmd.PersistentFlags().String("log-file", "", "Path to the log file (default: etl_pipeline.log)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("state", "", "Path to the run history database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewNotebookCommand())
	rootCmd.AddCommand(commands.NewDocsCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewReportCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	err := rootCmd.Execute()
	_ = closeLogs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func closeLogs() error {
	if logClose == nil {
		return nil
	}
	fn := logClose
	logClose = nil
	return fn()
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sakila-etl.

To load completions:

Bash:
  $ source <(sakila-etl completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ sakila-etl completion bash > /etc/bash_completion.d/sakila-etl
  # macOS:
  $ sakila-etl completion bash > $(brew --prefix)/etc/bash_completion.d/sakila-etl

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ sakila-etl completion zsh > "${fpath[1]}/_sakila-etl"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ sakila-etl completion fish | source

  # To load completions for each session, execute once:
  $ sakila-etl completion fish > ~/.config/fish/completions/sakila-etl.fish

PowerShell:
  PS> sakila-etl completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> sakila-etl completion powershell > sakila-etl.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
