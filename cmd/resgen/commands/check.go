package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/resgen/am"
	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/rclass"
	"github.com/teranos/resgen/symbols"
)

var checkFlags outputFlags

// CheckCmd checks that the generated R class is up to date
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that generated output is up to date",
	Long: `Check that the R class in the output directory matches the declarations.

The R class is regenerated into a temporary directory. The fresh Java
source and class files must decode to the same table, and the existing
output must match it.

Exit codes:
  0 - Output is up to date
  1 - Output is out of date or missing (differences shown)

Examples:
  resgen check
  resgen check -o build/gen`,
	RunE: runCheck,
}

func init() {
	checkFlags.register(CheckCmd)
}

// checkReport collects differences per artifact
type checkReport struct {
	differences map[string][]string
	order       []string
}

func (r *checkReport) add(artifact string, diffs ...string) {
	if len(diffs) == 0 {
		return
	}
	if r.differences == nil {
		r.differences = make(map[string][]string)
	}
	if _, seen := r.differences[artifact]; !seen {
		r.order = append(r.order, artifact)
	}
	r.differences[artifact] = append(r.differences[artifact], diffs...)
}

func (r *checkReport) upToDate() bool {
	return len(r.order) == 0
}

func runCheck(cmd *cobra.Command, args []string) error {
	loaded, err := LoadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	checkFlags.apply(cmd, loaded.Config)
	cfg := loaded.Config
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	fmt.Println("Checking generated R class...")
	report, err := check(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if report.upToDate() {
		pterm.Success.Println("R class is up to date")
		return nil
	}

	pterm.Error.Println("R class is out of date")
	for _, artifact := range report.order {
		fmt.Printf("\n%s:\n", artifact)
		for _, d := range report.differences[artifact] {
			fmt.Printf("  - %s\n", d)
		}
	}
	return errors.New("generated R class is out of date - run 'resgen generate' to update")
}

// check regenerates into a temporary directory and compares
func check(ctx context.Context, cfg *am.Config) (*checkReport, error) {
	tempDir, err := os.MkdirTemp("", "resgen-check-*")
	if err != nil {
		return nil, errors.WrapIO(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	// Both encodings are always generated for the parity check
	fresh := *cfg
	fresh.Output.Java, fresh.Output.Class = true, true
	s, err := prepare(&fresh, tempDir)
	if err != nil {
		return nil, err
	}
	result, err := s.writer.Flush(ctx)
	if err != nil {
		return nil, err
	}
	pkg := s.writer.Options().Package

	report := &checkReport{}
	freshJava, err := rclass.ReadJava(result.Java)
	if err != nil {
		return nil, err
	}
	freshClasses, err := rclass.ReadClasses(tempDir, pkg)
	if err != nil {
		return nil, err
	}
	report.add("parity (R.java vs class files)", symbols.Diff(freshJava, freshClasses)...)

	if cfg.Output.Java {
		existing := rclass.JavaPath(cfg.Output.Base, pkg)
		report.add(relPath(existing), compareJava(existing, result.Java, result.Table)...)
	}
	if cfg.Output.Class {
		existing := rclass.ClassDir(cfg.Output.Base, pkg)
		table, err := rclass.ReadClasses(cfg.Output.Base, pkg)
		if err != nil {
			report.add(relPath(existing), fmt.Sprintf("cannot read class files: %v", err))
		} else {
			report.add(relPath(existing), symbols.Diff(result.Table, table)...)
		}
		stale, err := rclass.StaleClasses(result.Table, cfg.Output.Base, pkg)
		if err != nil {
			return nil, err
		}
		for _, path := range stale {
			report.add(relPath(existing), fmt.Sprintf("stale class file %s", filepath.Base(path)))
		}
	}
	return report, nil
}

// compareJava compares an existing R.java with a freshly generated one:
// tables first, then bytes, so formatting drift is caught as well
func compareJava(existing, generated string, want *symbols.Table) []string {
	got, err := rclass.ReadJava(existing)
	if err != nil {
		return []string{fmt.Sprintf("cannot read: %v", err)}
	}
	if diffs := symbols.Diff(want, got); len(diffs) > 0 {
		return diffs
	}
	a, errA := os.ReadFile(existing)
	b, errB := os.ReadFile(generated)
	if errA != nil || errB != nil || !bytes.Equal(a, b) {
		return []string{"same symbols, different source text"}
	}
	return nil
}
