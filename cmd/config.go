package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/grovetools/leader/cli"
	"github.com/grovetools/leader/config"
	"github.com/grovetools/leader/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd returns the `config` command, which prints the effective config.
func NewConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with defaults applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Locate(cli.GetOptions(cmd).ConfigFile)
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(cmd.OutOrStdout(), cfg)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to render config")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# Source: %s\n%s", path, data)
			return nil
		},
	}
}

type validateResult struct {
	ConfigPath  string   `json:"config_path"`
	Entries     int      `json:"entries"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// NewValidateCmd returns the `validate` command.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a config file and report table diagnostics",
		Long: `Parse and validate a config file, then build its sequence table.
Schema and semantic errors fail the command; empty keys and duplicate
sequences are reported as warnings because the daemon tolerates them.

Examples:
  leader validate
  leader validate ./leader.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set("config", args[0]); err != nil {
					return err
				}
			}
			path, _, table, diags, err := localTable(cmd)
			if err != nil {
				return err
			}

			res := validateResult{ConfigPath: path, Entries: table.Len(), Diagnostics: diagnosticStrings(diags)}
			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}

			p := pretty(cmd)
			p.Success(fmt.Sprintf("Configuration is valid: %d sequences", res.Entries))
			p.Path("Config", path)
			for _, d := range res.Diagnostics {
				p.Warn(d)
			}
			return nil
		},
	}
}

// NewSchemaCmd returns the `schema` command.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for the config file",
		Long: `Print the JSON Schema the config file is validated against. Point
your editor's YAML language server at it for completion.

Examples:
  leader schema > ~/.config/leader/schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

// NewInitCmd returns the `init` command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cli.GetOptions(cmd).ConfigFile
			if path == "" {
				path = config.DefaultPath()
			}
			force, _ := cmd.Flags().GetBool("force")

			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidInput, "config file already exists").
					WithDetail("path", path).
					WithDetail("hint", "use --force to overwrite")
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to create config directory")
			}
			if err := os.WriteFile(path, []byte(config.Sample), 0o644); err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to write config file")
			}

			p := pretty(cmd)
			p.Success("Wrote starter config")
			p.Path("Config", path)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing config file")
	return cmd
}
