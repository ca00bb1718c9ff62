package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teranos/resgen/am"
	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/framework"
	"github.com/teranos/resgen/logger"
	"github.com/teranos/resgen/manifest"
	"github.com/teranos/resgen/rclass"
	"github.com/teranos/resgen/symbols"
)

// ConfigFile, when set by the root --config flag, replaces the upward search
// for resgen.toml
var ConfigFile string

// LoadConfig loads the configuration the commands run with
func LoadConfig() (*am.Loaded, error) {
	if ConfigFile != "" {
		return am.LoadExplicit(ConfigFile)
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to determine working directory")
	}
	return am.LoadFrom(dir)
}

// outputFlags are the generation settings every command accepts; set flags
// override the configuration
type outputFlags struct {
	base       string
	pkg        string
	manifests  []string
	java       bool
	class      bool
	androidJar string
	attrsFile  string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.base, "out", "o", "", "Output base directory (default from config: output.base)")
	cmd.Flags().StringVarP(&f.pkg, "package", "p", "", "Java package of the generated R class")
	cmd.Flags().StringSliceVarP(&f.manifests, "manifest", "m", nil, "Declaration manifest (.yaml, .toml, .json); repeatable")
	cmd.Flags().BoolVar(&f.java, "java", true, "Write R.java")
	cmd.Flags().BoolVar(&f.class, "class", true, "Write R.class and R$<type>.class")
	cmd.Flags().StringVar(&f.androidJar, "android-jar", "", "SDK android.jar supplying platform attribute ids")
	cmd.Flags().StringVar(&f.attrsFile, "attrs", "", "Platform attribute table (.yaml, .toml, .json)")
}

// apply copies explicitly set flags over cfg
func (f *outputFlags) apply(cmd *cobra.Command, cfg *am.Config) {
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Output.Base = f.base
	}
	if flags.Changed("package") {
		cfg.Output.Package = f.pkg
	}
	if flags.Changed("manifest") {
		cfg.Input.Manifests = f.manifests
	}
	if flags.Changed("java") {
		cfg.Output.Java = f.java
	}
	if flags.Changed("class") {
		cfg.Output.Class = f.class
	}
	if flags.Changed("android-jar") {
		cfg.Framework.AndroidJar = f.androidJar
	}
	if flags.Changed("attrs") {
		cfg.Framework.AttrsFile = f.attrsFile
	}
}

// newResolver chains the configured platform sources; the jar is consulted
// before the attribute table
func newResolver(cfg *am.Config) (framework.Resolver, error) {
	var chain framework.Chain
	if cfg.Framework.AndroidJar != "" {
		if _, err := os.Stat(cfg.Framework.AndroidJar); err != nil {
			return nil, errors.WrapIOf(err, "android.jar %s", cfg.Framework.AndroidJar)
		}
		chain = append(chain, framework.NewJar(cfg.Framework.AndroidJar))
	}
	if cfg.Framework.AttrsFile != "" {
		table, err := framework.LoadTable(cfg.Framework.AttrsFile)
		if err != nil {
			return nil, err
		}
		chain = append(chain, table)
	}
	if len(chain) == 0 {
		return framework.None, nil
	}
	return chain, nil
}

// session is one fully prepared generation: the declarations loaded, the
// package decided and the writer populated
type session struct {
	cfg      *am.Config
	manifest *manifest.Manifest
	writer   *rclass.Writer
}

// prepare loads manifests and replays them into a writer rooted at base
func prepare(cfg *am.Config, base string) (*session, error) {
	if len(cfg.Input.Manifests) == 0 {
		return nil, errors.WithHint(
			errors.New("no declaration manifests configured"),
			"pass --manifest or set input.manifests in resgen.toml")
	}
	m, err := manifest.LoadAll(cfg.Input.Manifests)
	if err != nil {
		return nil, err
	}

	pkg := cfg.Output.Package
	if pkg == "" {
		pkg = m.Package
	}
	if pkg == "" {
		return nil, errors.WithHint(
			errors.New("no java package"),
			"pass --package, set output.package or add package to the manifest")
	}

	resolver, err := newResolver(cfg)
	if err != nil {
		return nil, err
	}
	w, err := rclass.NewWriter(rclass.Options{
		Base:         base,
		Package:      pkg,
		IncludeJava:  cfg.Output.Java,
		IncludeClass: cfg.Output.Class,
	}, resolver)
	if err != nil {
		return nil, err
	}
	m.Replay(w)

	logger.Debugw("declarations loaded",
		logger.FieldPackage, pkg,
		logger.FieldCount, w.Len(),
		logger.FieldFile, cfg.Input.Manifests)
	return &session{cfg: cfg, manifest: m, writer: w}, nil
}

// buildTable allocates without writing anything
func buildTable(ctx context.Context, cfg *am.Config) (*symbols.Table, string, error) {
	s, err := prepare(cfg, cfg.Output.Base)
	if err != nil {
		return nil, "", err
	}
	table, err := s.writer.Build(ctx)
	if err != nil {
		return nil, "", err
	}
	return table, s.writer.Options().Package, nil
}

// relPath shortens path for display when it lies below the working directory
func relPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !filepath.IsAbs(rel) && len(rel) < len(path) {
		return rel
	}
	return path
}
