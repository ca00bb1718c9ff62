package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/resgen/cmd/resgen/commands"
	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "resgen",
	Short: "resgen - placeholder R class generator for Android libraries",
	Long: `resgen - placeholder R class generator for Android libraries.

Reads resource declarations, allocates placeholder identifiers and writes
the library's R class both as R.java and as loadable class files. The
final application build assigns the real identifiers.

Available commands:
  generate - Write R.java and R class files
  check    - Verify generated output is up to date
  inspect  - Print the allocated symbol table
  config   - Manage resgen.toml
  version  - Show build information

Examples:
  resgen config init -p com.example.lib
  resgen generate -m res/declarations.yaml
  resgen check`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")

		// Config may raise verbosity; flags win otherwise. A broken config
		// is reported by the command itself.
		if loaded, err := commands.LoadConfig(); err == nil {
			verbosity = max(verbosity, loaded.Log.Verbosity)
			if !cmd.Flags().Changed("log-json") {
				jsonLogs = loaded.Log.JSON
			}
		}

		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON on stderr")
	rootCmd.PersistentFlags().StringVarP(&commands.ConfigFile, "config", "c", "", "Config file (default: nearest resgen.toml)")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.InspectCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
