package symbols

import (
	"fmt"
	"strings"

	"github.com/teranos/resgen/res"
)

// Field is one allocated R class field. Array is non-nil for styleables and
// holds the member identifiers in declaration order; Value is used otherwise.
type Field struct {
	Name  string
	Value int32
	Array []int32
}

// IsArray reports whether the field is an int[] field.
func (f Field) IsArray() bool {
	return f.Array != nil
}

// String renders the field the way it appears in a diff.
func (f Field) String() string {
	if !f.IsArray() {
		return fmt.Sprintf("%s = 0x%x", f.Name, uint32(f.Value))
	}
	parts := make([]string, len(f.Array))
	for i, v := range f.Array {
		parts[i] = fmt.Sprintf("0x%x", uint32(v))
	}
	return fmt.Sprintf("%s = { %s }", f.Name, strings.Join(parts, ", "))
}

// Group holds the fields of one resource type, in emission order.
type Group struct {
	Type   res.Type
	Fields []Field
}

// Table is the allocator output. It is shared by both emitters and must not
// be modified once built.
type Table struct {
	Groups []Group
}

// Len returns the total number of fields.
func (t *Table) Len() int {
	n := 0
	for _, g := range t.Groups {
		n += len(g.Fields)
	}
	return n
}

// Group returns the group of one type.
func (t *Table) Group(typ res.Type) (Group, bool) {
	for _, g := range t.Groups {
		if g.Type == typ {
			return g, true
		}
	}
	return Group{}, false
}

// Lookup returns the field for (type, name).
func (t *Table) Lookup(typ res.Type, name string) (Field, bool) {
	g, ok := t.Group(typ)
	if !ok {
		return Field{}, false
	}
	for _, f := range g.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Diff compares two tables type by type and field by field, order included.
// It returns one line per difference; an empty result means the tables are
// equivalent.
func Diff(want, got *Table) []string {
	var diffs []string
	n := max(len(want.Groups), len(got.Groups))
	for i := 0; i < n; i++ {
		switch {
		case i >= len(want.Groups):
			diffs = append(diffs, fmt.Sprintf("unexpected type %s", got.Groups[i].Type))
			continue
		case i >= len(got.Groups):
			diffs = append(diffs, fmt.Sprintf("missing type %s", want.Groups[i].Type))
			continue
		}
		wg, gg := want.Groups[i], got.Groups[i]
		if wg.Type != gg.Type {
			diffs = append(diffs, fmt.Sprintf("type #%d: want %s, got %s", i, wg.Type, gg.Type))
			continue
		}
		diffs = append(diffs, diffFields(wg, gg)...)
	}
	return diffs
}

func diffFields(want, got Group) []string {
	var diffs []string
	n := max(len(want.Fields), len(got.Fields))
	for i := 0; i < n; i++ {
		switch {
		case i >= len(want.Fields):
			diffs = append(diffs, fmt.Sprintf("%s: unexpected %s", got.Type, got.Fields[i]))
		case i >= len(got.Fields):
			diffs = append(diffs, fmt.Sprintf("%s: missing %s", want.Type, want.Fields[i]))
		case !equalField(want.Fields[i], got.Fields[i]):
			diffs = append(diffs, fmt.Sprintf("%s: want %s, got %s", want.Type, want.Fields[i], got.Fields[i]))
		}
	}
	return diffs
}

func equalField(a, b Field) bool {
	if a.Name != b.Name || a.IsArray() != b.IsArray() {
		return false
	}
	if !a.IsArray() {
		return a.Value == b.Value
	}
	if len(a.Array) != len(b.Array) {
		return false
	}
	for i := range a.Array {
		if a.Array[i] != b.Array[i] {
			return false
		}
	}
	return true
}
