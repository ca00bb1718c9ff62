package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/resgen/am"
	"github.com/teranos/resgen/display"
	"github.com/teranos/resgen/errors"
)

// ConfigCmd manages resgen.toml
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage resgen configuration",
	Long: `Display and manage resgen configuration.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (RESGEN_* prefix, e.g. RESGEN_OUTPUT_PACKAGE)
3. Project config (resgen.toml, searched upward from the working directory)
4. User config (~/.resgen/resgen.toml)
5. Default values

Examples:
  resgen config init -p com.example.lib   # Write a starter resgen.toml
  resgen config show                      # Effective configuration
  resgen config show --sources            # Where each value came from
  resgen config validate`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter resgen.toml in the working directory",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate current configuration, or a single config file",
	Long: `Validate the effective configuration.

With a file argument only that file is checked, over the defaults: the user
config and RESGEN_* variables are not consulted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigValidate,
}

var (
	configFormat  string
	configSources bool
	configPackage string
	configForce   bool
)

func init() {
	configInitCmd.Flags().StringVarP(&configPackage, "package", "p", "", "Java package to write into output.package")
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing resgen.toml (a backup is kept)")
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	configShowCmd.Flags().BoolVar(&configSources, "sources", false, "List each setting with its source")

	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := ConfigFile
	if path == "" {
		dir, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "failed to determine working directory")
		}
		path = filepath.Join(dir, am.ConfigFileName)
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return errors.WithHint(
			errors.Newf("%s already exists", relPath(path)),
			"pass --force to overwrite it; the old file is kept as .back1")
	}

	if err := am.WriteDefault(path, configPackage); err != nil {
		return errors.Wrap(err, "failed to write config")
	}
	pterm.Success.Printf("Wrote %s\n", relPath(path))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loaded, err := LoadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	if configSources {
		return showSources(loaded)
	}

	format, err := display.ParseFormat(configFormat, display.FormatTOML, display.FormatJSON, display.FormatYAML)
	if err != nil {
		return err
	}
	return display.Write(cmd.OutOrStdout(), loaded.Config, format, "resgen configuration")
}

func showSources(loaded *am.Loaded) error {
	if len(loaded.Files) == 0 {
		pterm.Info.Println("No config file found, using defaults")
	}
	for _, f := range loaded.Files {
		pterm.Info.Printf("Loaded %s\n", relPath(f))
	}

	data := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range loaded.Settings() {
		data = append(data, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), relPath(s.SourcePath)})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	var cfg *am.Config
	if len(args) == 1 {
		fileCfg, err := am.LoadFromFile(args[0])
		if err != nil {
			return err
		}
		cfg = fileCfg
	} else {
		loaded, err := LoadConfig()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}
		cfg = loaded.Config
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}
