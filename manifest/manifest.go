// Package manifest reads declaration files: ordered lists of resource
// declarations that are replayed into a symbols.Sink.
//
// YAML layout (TOML uses [[declarations]] tables, JSON the same keys):
//
//	package: com.example.lib
//	declarations:
//	  - {kind: simple, type: string, name: app_name}
//	  - {kind: public, type: drawable, name: icon, value: 0x7f020001}
//	  - kind: styleable
//	    name: MyView
//	    attrs:
//	      - name: android:textColor
//	      - {name: customFlag, local: true}
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/res"
	"github.com/teranos/resgen/symbols"
)

// Kind selects which accept call a declaration replays as.
type Kind string

const (
	KindSimple    Kind = "simple"
	KindPublic    Kind = "public"
	KindStyleable Kind = "styleable"
)

// Declaration is one manifest entry.
type Declaration struct {
	Kind  Kind
	Type  res.Type
	Name  string
	Value *int32
	Attrs []symbols.AttrRef
}

// Manifest is a decoded declaration file.
type Manifest struct {
	// Path is the file the manifest was loaded from, if any.
	Path string
	// Package optionally names the Java package the declarations belong to.
	Package      string
	Declarations []Declaration
}

// Replay issues one accept call per declaration, in file order.
func (m *Manifest) Replay(sink symbols.Sink) {
	for _, d := range m.Declarations {
		switch d.Kind {
		case KindStyleable:
			sink.AcceptStyleable(d.Name, d.Attrs)
		case KindPublic:
			sink.AcceptPublic(d.Type, d.Name, d.Value)
		default:
			sink.AcceptSimple(d.Type, d.Name)
		}
	}
}

// Counts returns the number of declarations per kind.
func (m *Manifest) Counts() map[Kind]int {
	counts := make(map[Kind]int, 3)
	for _, d := range m.Declarations {
		counts[d.Kind]++
	}
	return counts
}

// Format is a manifest encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.WithHint(
			errors.Newf("unsupported manifest format %q", filepath.Ext(path)),
			"use .yaml, .toml or .json")
	}
}

// Load reads a manifest file; the format follows the extension.
func Load(path string) (*Manifest, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIOf(err, "failed to read manifest %s", path)
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	m.Path = path
	return m, nil
}

// Parse decodes manifest data in the given format.
func Parse(data []byte, format Format) (*Manifest, error) {
	var (
		raw *rawManifest
		err error
	)
	switch format {
	case FormatYAML:
		raw, err = parseYAML(data)
	case FormatTOML:
		raw, err = parseTOML(data)
	case FormatJSON:
		raw, err = parseJSON(data)
	default:
		return nil, errors.Newf("unsupported manifest format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return raw.manifest()
}

// LoadAll loads several manifests and concatenates their declarations in
// argument order. The first non-empty package wins.
func LoadAll(paths []string) (*Manifest, error) {
	merged := &Manifest{}
	for _, path := range paths {
		m, err := Load(path)
		if err != nil {
			return nil, err
		}
		if merged.Package == "" {
			merged.Package = m.Package
		}
		merged.Declarations = append(merged.Declarations, m.Declarations...)
	}
	if len(paths) == 1 {
		merged.Path = paths[0]
	}
	return merged, nil
}
