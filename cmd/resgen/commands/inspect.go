package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/resgen/display"
	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/res"
	"github.com/teranos/resgen/symbols"
)

var (
	inspectFlags  outputFlags
	inspectFormat string
	inspectTypes  []string
)

// InspectCmd prints the allocated symbol table without writing files
var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the allocated symbol table",
	Long: `Allocate identifiers for the configured declarations and print them.
Nothing is written.

Examples:
  resgen inspect                       # Table view
  resgen inspect --type styleable      # One type only
  resgen inspect --format json`,
	RunE: runInspect,
}

func init() {
	inspectFlags.register(InspectCmd)
	InspectCmd.Flags().StringVar(&inspectFormat, "format", "table", "Output format: table, json, yaml")
	InspectCmd.Flags().StringSliceVarP(&inspectTypes, "type", "t", nil, "Only show these resource types")
}

// fieldView is the serialized form of one field; values are hex strings
type fieldView struct {
	Type  string   `json:"type" yaml:"type"`
	Name  string   `json:"name" yaml:"name"`
	Value string   `json:"value,omitempty" yaml:"value,omitempty"`
	Array []string `json:"array,omitempty" yaml:"array,omitempty,flow"`
}

func hex(v int32) string {
	return fmt.Sprintf("0x%08x", uint32(v))
}

func runInspect(cmd *cobra.Command, args []string) error {
	loaded, err := LoadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	inspectFlags.apply(cmd, loaded.Config)

	filter := make(map[res.Type]bool)
	for _, name := range inspectTypes {
		t, err := res.ParseType(name)
		if err != nil {
			return err
		}
		filter[t] = true
	}

	table, pkg, err := buildTable(cmd.Context(), loaded.Config)
	if err != nil {
		return err
	}
	views := tableViews(table, filter)

	if inspectFormat == "table" {
		return renderTable(pkg, views)
	}
	format, err := display.ParseFormat(inspectFormat, display.FormatJSON, display.FormatYAML)
	if err != nil {
		return errors.WithHint(err, "the default format is table")
	}
	return display.Write(cmd.OutOrStdout(), views, format, pkg+".R")
}

func tableViews(table *symbols.Table, filter map[res.Type]bool) []fieldView {
	var views []fieldView
	for _, g := range table.Groups {
		if len(filter) > 0 && !filter[g.Type] {
			continue
		}
		for _, f := range g.Fields {
			view := fieldView{Type: g.Type.String(), Name: f.Name}
			if f.IsArray() {
				view.Array = make([]string, len(f.Array))
				for i, v := range f.Array {
					view.Array[i] = hex(v)
				}
			} else {
				view.Value = hex(f.Value)
			}
			views = append(views, view)
		}
	}
	return views
}

func renderTable(pkg string, views []fieldView) error {
	pterm.DefaultSection.Printf("%s.R", pkg)

	data := pterm.TableData{{"Type", "Name", "Value"}}
	for _, v := range views {
		value := v.Value
		if v.Value == "" {
			value = "{ " + strings.Join(v.Array, ", ") + " }"
		}
		data = append(data, []string{v.Type, v.Name, value})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	pterm.Info.Printf("%d fields\n", len(views))
	return nil
}
