// Package res defines the resource model shared by the accumulator, the
// allocator and both emitters: resource types in their canonical order and
// the mapping from resource names to generated field names.
package res

import (
	"strings"

	"github.com/teranos/resgen/errors"
)

// Type is a resource category. The numeric order of the constants is the
// canonical order in which types appear in generated R classes.
type Type int

const (
	Anim Type = iota
	Animator
	Array
	Attr
	Bool
	Color
	Dimen
	Drawable
	Font
	Fraction
	ID
	Integer
	Interpolator
	Layout
	Menu
	Mipmap
	Navigation
	Plurals
	Raw
	String
	Style
	Styleable
	Transition
	XML

	numTypes
)

var typeNames = [numTypes]string{
	Anim:         "anim",
	Animator:     "animator",
	Array:        "array",
	Attr:         "attr",
	Bool:         "bool",
	Color:        "color",
	Dimen:        "dimen",
	Drawable:     "drawable",
	Font:         "font",
	Fraction:     "fraction",
	ID:           "id",
	Integer:      "integer",
	Interpolator: "interpolator",
	Layout:       "layout",
	Menu:         "menu",
	Mipmap:       "mipmap",
	Navigation:   "navigation",
	Plurals:      "plurals",
	Raw:          "raw",
	String:       "string",
	Style:        "style",
	Styleable:    "styleable",
	Transition:   "transition",
	XML:          "xml",
}

// Types returns every resource type in canonical order.
func Types() []Type {
	out := make([]Type, numTypes)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// String returns the canonical lower-case name, which is also the name of
// the nested class generated for the type.
func (t Type) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return typeNames[t]
}

// Valid reports whether t is one of the known resource types.
func (t Type) Valid() bool {
	return t >= 0 && t < numTypes
}

// ParseType maps a canonical type name back to its Type.
// "declare-styleable" is accepted as an alias of styleable.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "declare-styleable" {
		return Styleable, nil
	}
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return 0, errors.Newf("unknown resource type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.Newf("invalid resource type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so that config and
// manifest decoders accept type names directly.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
