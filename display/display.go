// Package display renders command results in the structured formats the CLI
// offers next to its human-readable views.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/resgen/errors"
)

// Format is a structured output format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat accepts name if it is one of allowed
func ParseFormat(name string, allowed ...Format) (Format, error) {
	names := make([]string, len(allowed))
	for i, f := range allowed {
		if string(f) == strings.ToLower(name) {
			return f, nil
		}
		names[i] = string(f)
	}
	return "", errors.Newf("unsupported format: %s (supported: %s)", name, strings.Join(names, ", "))
}

// Marshal encodes v. JSON is always indented.
func Marshal(v interface{}, format Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case FormatYAML:
		data, err = yaml.Marshal(v)
	case FormatTOML:
		data, err = toml.Marshal(v)
	default:
		return nil, errors.Newf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s", strings.ToUpper(string(format)))
	}
	return data, nil
}

// Write marshals v to w. For YAML and TOML a non-empty title is written
// first as a comment line; JSON has no comments and stays bare.
func Write(w io.Writer, v interface{}, format Format, title string) error {
	data, err := Marshal(v, format)
	if err != nil {
		return err
	}
	if title != "" && format != FormatJSON {
		if _, err := fmt.Fprintf(w, "# %s\n", title); err != nil {
			return errors.Wrap(err, "failed to write output")
		}
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "failed to write output")
	}
	return nil
}

// ShouldOutputJSON reports whether --json was set on the command or as a
// persistent flag on its root
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}
	globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json")
	return globalFlag
}
