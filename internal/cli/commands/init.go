package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sakila-etl/internal/cli/config"
	"github.com/leapstack-labs/sakila-etl/internal/cli/output"
	sharedcfg "github.com/leapstack-labs/sakila-etl/internal/config"
	"github.com/leapstack-labs/sakila-etl/internal/sqlfiles"
)

// configHeader is written above the generated configuration.
const configHeader = `# sakila-etl configuration
#
# Values left out here are asked for when "sakila-etl run" starts, the
# password always without echo. ${VAR} references are expanded from the
# environment, and every key can be overridden with a SAKILA_ETL_ variable,
# e.g. SAKILA_ETL_TARGET_HOST.`

// initTarget is the target section of the generated configuration.
type initTarget struct {
	Type                   string `yaml:"type"`
	Host                   string `yaml:"host,omitempty"`
	Port                   int    `yaml:"port,omitempty"`
	Database               string `yaml:"database"`
	User                   string `yaml:"user,omitempty"`
	Encrypt                bool   `yaml:"encrypt"`
	TrustServerCertificate bool   `yaml:"trust_server_certificate"`
	ConnectTimeout         string `yaml:"connect_timeout"`
}

type initNotebook struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
}

// initConfig is the generated sakila-etl.yaml.
type initConfig struct {
	ReportsDir string       `yaml:"reports_dir"`
	SQLDir     string       `yaml:"sql_dir,omitempty"`
	LogFile    string       `yaml:"log_file"`
	LogLevel   string       `yaml:"log_level"`
	StatePath  string       `yaml:"state_path"`
	History    bool         `yaml:"history"`
	Target     initTarget   `yaml:"target"`
	Notebook   initNotebook `yaml:"notebook"`
}

func defaultInitConfig(exportSQL bool) initConfig {
	c := initConfig{
		ReportsDir: config.DefaultReportsDir,
		LogFile:    config.DefaultLogFile,
		LogLevel:   config.DefaultLogLevel,
		StatePath:  config.DefaultStateFile,
		History:    true,
		Target: initTarget{
			Type:           sharedcfg.DefaultTargetType,
			Port:           sharedcfg.DefaultMSSQLPort,
			Database:       sharedcfg.DefaultDatabase,
			Encrypt:        sharedcfg.DefaultEncrypt,
			ConnectTimeout: sharedcfg.DefaultConnectTimeout.String(),
		},
		Notebook: initNotebook{
			Source: config.DefaultNotebookSource,
			Output: config.DefaultNotebookOutput,
		},
	}
	if exportSQL {
		c.SQLDir = "sql"
	}
	return c
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var exportSQL bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a sakila-etl project",
		Long: `Initialize a sakila-etl project with a default configuration.

This creates:
  - sakila-etl.yaml configuration file
  - reports/ folder for the exported report files

Use --export-sql to also write the built-in SQL scripts to sql/ so they can
be edited; the generated configuration then points sql_dir at them.`,
		Example: `  # Initialize in current directory
  sakila-etl init

  # Initialize in a new directory with editable SQL scripts
  sakila-etl init my-etl --export-sql

  # Force overwrite existing config
  sakila-etl init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(output.FromContext(cmd.Context()), dir, force, exportSQL)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration and SQL files")
	cmd.Flags().BoolVar(&exportSQL, "export-sql", false, "Write the built-in SQL scripts to sql/")

	return cmd
}

func runInit(r *output.Renderer, dir string, force, exportSQL bool) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileName)
	}

	data, err := renderInitConfig(defaultInitConfig(exportSQL))
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	r.StatusLine(config.ConfigFileName, "success", "")

	if err := os.MkdirAll(filepath.Join(dir, config.DefaultReportsDir), 0o750); err != nil {
		return fmt.Errorf("failed to create reports folder: %w", err)
	}
	r.StatusLine(config.DefaultReportsDir+"/", "success", "")

	if exportSQL {
		written, err := sqlfiles.Export(filepath.Join(dir, "sql"), force)
		if err != nil {
			return fmt.Errorf("failed to export SQL scripts: %w", err)
		}
		for _, f := range written {
			rel, relErr := filepath.Rel(dir, f)
			if relErr != nil {
				rel = f
			}
			r.StatusLine(filepath.ToSlash(rel), "success", "")
		}
	}

	r.Println("")
	r.Success("sakila-etl project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Set target.host (and optionally target.user) in " + config.ConfigFileName)
	r.Println("  2. Run 'sakila-etl run' to execute the pipeline")
	r.Println("  3. Run 'sakila-etl history' to review past runs")

	return nil
}

// renderInitConfig encodes c with the explanatory header.
func renderInitConfig(c initConfig) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	doc.HeadComment = configHeader

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return data, nil
}
