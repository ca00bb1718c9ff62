package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/resgen/am"
	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/logger"
	"github.com/teranos/resgen/rclass"
)

var (
	generateFlags outputFlags
	generateWatch bool
)

// GenerateCmd writes the placeholder R class
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate R.java and R class files",
	Long: `Generate the placeholder R class of a library package.

Declarations are read from one or more manifests and replayed in order.
Identifiers are allocated once and written both as Java source and as
class files; either encoding can be turned off.

Examples:
  resgen generate                                   # Use resgen.toml
  resgen generate -m res/declarations.yaml -p com.example.lib -o build/gen
  resgen generate --class=false                     # R.java only
  resgen generate --android-jar $ANDROID_HOME/platforms/android-34/android.jar
  resgen generate --watch                           # Regenerate on change`,
	RunE: runGenerate,
}

func init() {
	generateFlags.register(GenerateCmd)
	GenerateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate when the config or a manifest changes")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	loaded, err := LoadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	generateFlags.apply(cmd, loaded.Config)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := generateOnce(ctx, loaded.Config); err != nil {
		return err
	}
	if !generateWatch {
		return nil
	}
	return watch(ctx, cmd, loaded)
}

func generateOnce(ctx context.Context, cfg *am.Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	start := time.Now()
	s, err := prepare(cfg, cfg.Output.Base)
	if err != nil {
		return err
	}
	result, err := s.writer.Flush(ctx)
	if err != nil {
		return err
	}
	logger.Debugw("generation complete",
		logger.FieldPackage, s.writer.Options().Package,
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	reportResult(result)
	return nil
}

func reportResult(result *rclass.Result) {
	if result.Java != "" {
		pterm.Success.Printf("Wrote %s\n", relPath(result.Java))
	}
	if len(result.Classes) > 0 {
		pterm.Success.Printf("Wrote %d class files to %s\n", len(result.Classes), relPath(filepath.Dir(result.Classes[0])))
	}
	pterm.Info.Printf("%d symbols in %d types\n", result.Table.Len(), len(result.Table.Groups))
}

// watch regenerates whenever the config file or a manifest changes, until
// interrupted. Failures are reported and watching continues.
func watch(ctx context.Context, cmd *cobra.Command, loaded *am.Loaded) error {
	dir, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "failed to determine working directory")
	}

	paths := append([]string{}, loaded.Input.Manifests...)
	paths = append(paths, loaded.Files...)
	if len(loaded.Files) == 0 {
		// Watch for a resgen.toml being created here
		paths = append(paths, filepath.Join(dir, am.ConfigFileName))
	}

	w, err := am.NewWatcher(dir, paths...)
	if err != nil {
		return err
	}
	defer w.Close()
	w.SetLoader(LoadConfig)

	w.OnReload(func(cfg *am.Config) error {
		generateFlags.apply(cmd, cfg)
		if err := generateOnce(ctx, cfg); err != nil {
			pterm.Error.Printf("%v\n", err)
			return err
		}
		return nil
	})

	pterm.Info.Printf("Watching %d files, press Ctrl+C to stop\n", len(paths))
	return w.Run(ctx)
}
