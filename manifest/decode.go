package manifest

import (
	"bytes"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/buger/jsonparser"
	"gopkg.in/yaml.v3"

	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/res"
	"github.com/teranos/resgen/symbols"
)

type rawAttr struct {
	Name  string `yaml:"name" toml:"name"`
	Local bool   `yaml:"local" toml:"local"`
}

type rawDeclaration struct {
	Kind  string      `yaml:"kind" toml:"kind"`
	Type  string      `yaml:"type" toml:"type"`
	Name  string      `yaml:"name" toml:"name"`
	Value interface{} `yaml:"value" toml:"value"`
	Attrs []rawAttr   `yaml:"attrs" toml:"attrs"`
}

type rawManifest struct {
	Package      string           `yaml:"package" toml:"package"`
	Declarations []rawDeclaration `yaml:"declarations" toml:"declarations"`
}

func parseYAML(data []byte) (*rawManifest, error) {
	var raw rawManifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to parse YAML manifest")
	}
	return &raw, nil
}

func parseTOML(data []byte) (*rawManifest, error) {
	var raw rawManifest
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse TOML manifest")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Newf("unknown manifest key %q", undecoded[0].String())
	}
	return &raw, nil
}

func parseJSON(data []byte) (*rawManifest, error) {
	raw := &rawManifest{}
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		switch string(key) {
		case "package":
			if dataType != jsonparser.String {
				return errors.New("package: expected string")
			}
			raw.Package = string(value)
		case "declarations":
			if dataType != jsonparser.Array {
				return errors.New("declarations: expected array")
			}
			var itemErr error
			_, err := jsonparser.ArrayEach(value, func(item []byte, itemType jsonparser.ValueType, _ int, _ error) {
				if itemErr != nil {
					return
				}
				var d rawDeclaration
				d, itemErr = jsonDeclaration(item, itemType)
				if itemErr != nil {
					itemErr = errors.Wrapf(itemErr, "declaration #%d", len(raw.Declarations))
					return
				}
				raw.Declarations = append(raw.Declarations, d)
			})
			if err != nil {
				return err
			}
			return itemErr
		default:
			return errors.Newf("unknown manifest key %q", key)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON manifest")
	}
	return raw, nil
}

func jsonDeclaration(item []byte, itemType jsonparser.ValueType) (rawDeclaration, error) {
	var d rawDeclaration
	if itemType != jsonparser.Object {
		return d, errors.New("expected object")
	}
	err := jsonparser.ObjectEach(item, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		switch string(key) {
		case "kind":
			d.Kind = string(value)
		case "type":
			d.Type = string(value)
		case "name":
			d.Name = string(value)
		case "value":
			if dataType != jsonparser.Number && dataType != jsonparser.String {
				return errors.Newf("value: expected number or string, got %s", dataType)
			}
			d.Value = string(value)
		case "attrs":
			if dataType != jsonparser.Array {
				return errors.New("attrs: expected array")
			}
			var attrErr error
			_, err := jsonparser.ArrayEach(value, func(attr []byte, attrType jsonparser.ValueType, _ int, _ error) {
				if attrErr != nil {
					return
				}
				if attrType != jsonparser.Object {
					attrErr = errors.New("attrs: expected objects")
					return
				}
				name, err := jsonparser.GetString(attr, "name")
				if err != nil {
					attrErr = errors.Wrap(err, "attrs: name")
					return
				}
				local, err := jsonparser.GetBoolean(attr, "local")
				if err != nil && err != jsonparser.KeyPathNotFoundError {
					attrErr = errors.Wrap(err, "attrs: local")
					return
				}
				d.Attrs = append(d.Attrs, rawAttr{Name: name, Local: local})
			})
			if err != nil {
				return err
			}
			return attrErr
		default:
			return errors.Newf("unknown declaration key %q", key)
		}
		return nil
	})
	return d, err
}

// manifest validates raw declarations and converts them. Kind may be left
// out: a styleable type implies styleable, an explicit value implies public.
func (raw *rawManifest) manifest() (*Manifest, error) {
	if raw.Package != "" && !res.ValidPackage(raw.Package) {
		return nil, invalid(errors.Newf("invalid java package %q", raw.Package))
	}
	m := &Manifest{
		Package:      raw.Package,
		Declarations: make([]Declaration, 0, len(raw.Declarations)),
	}
	for i, rd := range raw.Declarations {
		d, err := rd.declaration()
		if err != nil {
			return nil, errors.Wrapf(err, "declaration #%d", i)
		}
		m.Declarations = append(m.Declarations, d)
	}
	return m, nil
}

func (rd rawDeclaration) declaration() (Declaration, error) {
	var d Declaration
	if rd.Name == "" {
		return d, invalid(errors.New("missing name"))
	}
	d.Name = rd.Name

	kind := Kind(rd.Kind)
	if kind == "" {
		switch {
		case rd.Type == "styleable" || rd.Type == "declare-styleable":
			kind = KindStyleable
		case rd.Value != nil:
			kind = KindPublic
		default:
			kind = KindSimple
		}
	}
	d.Kind = kind

	switch kind {
	case KindStyleable:
		if rd.Type != "" {
			t, err := res.ParseType(rd.Type)
			if err != nil || t != res.Styleable {
				return d, invalid(errors.Newf("%s: styleable declared with type %q", rd.Name, rd.Type))
			}
		}
		if rd.Value != nil {
			return d, invalid(errors.Newf("%s: styleables cannot carry a value", rd.Name))
		}
		d.Type = res.Styleable
		d.Attrs = make([]symbols.AttrRef, 0, len(rd.Attrs))
		for _, a := range rd.Attrs {
			if a.Name == "" {
				return d, invalid(errors.Newf("%s: attribute without a name", rd.Name))
			}
			d.Attrs = append(d.Attrs, symbols.AttrRef{Name: a.Name, Local: a.Local})
		}
		return d, nil
	case KindSimple, KindPublic:
	default:
		return d, invalid(errors.Newf("%s: unknown kind %q", rd.Name, rd.Kind))
	}

	t, err := res.ParseType(rd.Type)
	if err != nil {
		return d, invalid(errors.Wrap(err, rd.Name))
	}
	if t == res.Styleable {
		return d, invalid(errors.Newf("%s: styleables must use kind styleable", rd.Name))
	}
	if len(rd.Attrs) > 0 {
		return d, invalid(errors.Newf("%s: only styleables may list attributes", rd.Name))
	}
	d.Type = t

	if rd.Value != nil {
		if kind != KindPublic {
			return d, invalid(errors.Newf("%s: only public declarations may carry a value", rd.Name))
		}
		v, err := res.IDFromValue(rd.Value)
		if err != nil {
			return d, invalid(errors.Wrap(err, rd.Name))
		}
		d.Value = &v
	}
	return d, nil
}

func invalid(err error) error {
	return errors.Mark(err, errors.ErrInvalidDeclaration)
}
