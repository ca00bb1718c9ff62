package framework

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/buger/jsonparser"
	"gopkg.in/yaml.v3"

	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/res"
)

// Table is an in-memory framework identifier map: type -> name -> id.
type Table map[res.Type]map[string]int32

// Resolve implements Resolver.
func (t Table) Resolve(_ context.Context, typ res.Type, name string) (int32, bool, error) {
	id, ok := t[typ][name]
	return id, ok, nil
}

// Add records one identifier, creating the type bucket on demand.
func (t Table) Add(typ res.Type, name string, id int32) {
	bucket, ok := t[typ]
	if !ok {
		bucket = make(map[string]int32)
		t[typ] = bucket
	}
	bucket[name] = id
}

// Len returns the number of identifiers across all types.
func (t Table) Len() int {
	n := 0
	for _, bucket := range t {
		n += len(bucket)
	}
	return n
}

// Names returns the names of one type in sorted order.
func (t Table) Names(typ res.Type) []string {
	names := make([]string, 0, len(t[typ]))
	for name := range t[typ] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// rawTable is the on-disk layout shared by YAML and TOML:
//
//	attr:
//	  textColor: 0x01010098
//	  layout_width: "0x010100f4"
//
// Values may be integers or strings in any base strconv accepts.
type rawTable map[string]map[string]interface{}

// LoadTable reads a framework identifier table. The format is chosen by
// extension: .yaml/.yml, .toml or .json.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read framework table %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".toml":
		return ParseTOML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return nil, errors.WithHint(
			errors.Newf("unsupported framework table format %q", filepath.Ext(path)),
			"use .yaml, .toml or .json")
	}
}

// ParseYAML decodes a YAML framework table.
func ParseYAML(data []byte) (Table, error) {
	var raw rawTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML framework table")
	}
	return raw.table()
}

// ParseTOML decodes a TOML framework table.
func ParseTOML(data []byte) (Table, error) {
	var raw rawTable
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse TOML framework table")
	}
	return raw.table()
}

// ParseJSON decodes a JSON framework table. JSON has no hex literals, so
// identifiers are usually written as strings ("0x01010098").
func ParseJSON(data []byte) (Table, error) {
	t := make(Table)
	err := jsonparser.ObjectEach(data, func(typeKey, typeValue []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.Object {
			return errors.Newf("type %q: expected object", typeKey)
		}
		typ, err := res.ParseType(string(typeKey))
		if err != nil {
			return err
		}
		return jsonparser.ObjectEach(typeValue, func(nameKey, value []byte, valueType jsonparser.ValueType, _ int) error {
			var id int32
			switch valueType {
			case jsonparser.Number, jsonparser.String:
				id, err = res.ParseID(string(value))
			default:
				err = errors.Newf("expected number or string, got %s", valueType)
			}
			if err != nil {
				return errors.Wrapf(err, "%s/%s", typ, nameKey)
			}
			t.Add(typ, string(nameKey), id)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON framework table")
	}
	return t, nil
}

func (raw rawTable) table() (Table, error) {
	t := make(Table)
	for typeName, names := range raw {
		typ, err := res.ParseType(typeName)
		if err != nil {
			return nil, err
		}
		for name, v := range names {
			id, err := res.IDFromValue(v)
			if err != nil {
				return nil, errors.Wrapf(err, "%s/%s", typ, name)
			}
			t.Add(typ, name, id)
		}
	}
	return t, nil
}
