package symbols

import (
	"context"
	"fmt"
	"strings"

	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/framework"
	"github.com/teranos/resgen/logger"
	"github.com/teranos/resgen/res"
)

// Placeholder identifiers follow the 0xPPTTNNNN layout of real resource ids:
// package 0x7f, a fixed per-type byte, and a per-type entry counter.
const (
	PackageID   = 0x7f
	maxEntryID  = 0xFFFF
	attrTypeID  = 0x01
	firstTypeID = 0x02
)

// TypeID returns the fixed type byte used in placeholder identifiers.
// attr is always 0x01; the remaining types follow in canonical order.
func TypeID(t res.Type) int32 {
	switch {
	case t == res.Attr:
		return attrTypeID
	case t < res.Attr:
		return firstTypeID + int32(t)
	default:
		return firstTypeID + int32(t) - 1
	}
}

// Placeholder returns the synthesized identifier for entry n of type t.
func Placeholder(t res.Type, n int) int32 {
	return PackageID<<24 | TypeID(t)<<16 | int32(n)
}

// Declaration is allocator input: one merged symbol.
type Declaration struct {
	Type   res.Type
	Name   string
	Public bool
	Value  *int32
	// Conflicts are explicit values that disagree with Value.
	Conflicts []int32
	// Attrs are styleable members in declaration order.
	Attrs []AttrRef
}

// Allocate assigns identifiers to every declaration. Types come out in
// canonical order and symbols in the order given. Styleable members are
// resolved through the platform resolver first, then through local attr
// declarations when the member is flagged local.
//
// Allocate fails on the first conflicting or invalid declaration and on the
// first styleable member that cannot be resolved; no partial table is
// returned.
func Allocate(ctx context.Context, decls []Declaration, resolver framework.Resolver) (*Table, error) {
	if resolver == nil {
		resolver = framework.None
	}
	log := logger.ComponentLogger("symbols")

	byType := make(map[res.Type][]Declaration)
	for _, d := range decls {
		byType[d.Type] = append(byType[d.Type], d)
	}

	table := &Table{}
	scalars := make(map[res.Type][]Field)
	for _, t := range res.Types() {
		if t == res.Styleable || len(byType[t]) == 0 {
			continue
		}
		fields, err := allocateType(t, byType[t])
		if err != nil {
			return nil, err
		}
		scalars[t] = fields
	}

	localAttrs := make(map[string]int32, len(scalars[res.Attr]))
	for _, f := range scalars[res.Attr] {
		localAttrs[f.Name] = f.Value
	}

	for _, t := range res.Types() {
		if len(byType[t]) == 0 {
			continue
		}
		group := Group{Type: t, Fields: scalars[t]}
		if t == res.Styleable {
			fields, err := allocateStyleables(ctx, byType[t], localAttrs, resolver)
			if err != nil {
				return nil, err
			}
			group.Fields = fields
		}
		table.Groups = append(table.Groups, group)
		log.Debugw("allocated type", logger.FieldType, t.String(), logger.FieldFields, len(group.Fields))
	}

	return table, nil
}

// allocateType assigns scalar identifiers for one type. Explicit values are
// reserved first so synthesized values never collide with them.
func allocateType(t res.Type, decls []Declaration) ([]Field, error) {
	pinned := make(map[int32]string)
	for _, d := range decls {
		if len(d.Conflicts) > 0 {
			return nil, conflictingValues(t, d)
		}
		if len(d.Attrs) > 0 {
			return nil, errors.Mark(
				errors.Newf("%s/%s: only styleables may list attributes", t, d.Name),
				errors.ErrInvalidDeclaration)
		}
		if d.Value == nil {
			continue
		}
		v := *d.Value
		if v < 0 {
			return nil, errors.Mark(
				errors.Newf("%s/%s: explicit value 0x%08x is negative", t, d.Name, uint32(v)),
				errors.ErrInvalidDeclaration)
		}
		if other, taken := pinned[v]; taken {
			err := errors.Newf("%s/%s and %s/%s are both pinned to 0x%08x", t, other, t, d.Name, v)
			return nil, errors.Mark(err, errors.ErrConflictingDeclaration)
		}
		pinned[v] = d.Name
	}

	fields := make([]Field, 0, len(decls))
	next := 0
	for _, d := range decls {
		if d.Value != nil {
			fields = append(fields, Field{Name: d.Name, Value: *d.Value})
			continue
		}
		var v int32
		for {
			if next > maxEntryID {
				return nil, errors.Mark(
					errors.Newf("%s: more than %d entries", t, maxEntryID+1),
					errors.ErrInvalidDeclaration)
			}
			v = Placeholder(t, next)
			next++
			if _, taken := pinned[v]; !taken {
				break
			}
		}
		fields = append(fields, Field{Name: d.Name, Value: v})
	}
	return fields, nil
}

func conflictingValues(t res.Type, d Declaration) error {
	values := make([]string, 0, len(d.Conflicts)+1)
	values = append(values, fmt.Sprintf("0x%08x", uint32(*d.Value)))
	for _, c := range d.Conflicts {
		values = append(values, fmt.Sprintf("0x%08x", uint32(c)))
	}
	err := errors.Newf("%s/%s declared with conflicting values %s", t, d.Name, strings.Join(values, " and "))
	err = errors.WithDetailf(err, "name=%s type=%s values=%s", d.Name, t, strings.Join(values, ","))
	return errors.Mark(err, errors.ErrConflictingDeclaration)
}

func allocateStyleables(ctx context.Context, decls []Declaration, localAttrs map[string]int32, resolver framework.Resolver) ([]Field, error) {
	fields := make([]Field, 0, len(decls))
	for _, d := range decls {
		if d.Value != nil {
			return nil, errors.Mark(
				errors.Newf("styleable %s cannot carry an explicit value", d.Name),
				errors.ErrInvalidDeclaration)
		}
		values := make([]int32, len(d.Attrs))
		for i, attr := range d.Attrs {
			id, err := resolveAttr(ctx, d.Name, attr, localAttrs, resolver)
			if err != nil {
				return nil, err
			}
			values[i] = id
		}
		fields = append(fields, Field{Name: d.Name, Array: values})
	}
	return fields, nil
}

func resolveAttr(ctx context.Context, styleable string, attr AttrRef, localAttrs map[string]int32, resolver framework.Resolver) (int32, error) {
	_, bare := res.SplitQualified(attr.Name)
	id, found, err := resolver.Resolve(ctx, res.Attr, bare)
	if err != nil {
		return 0, errors.WrapAttrLookup(err, styleable, attr.Name)
	}
	if found {
		return id, nil
	}
	if attr.Local {
		if id, ok := localAttrs[res.FieldName(bare)]; ok {
			return id, nil
		}
	}
	return 0, errors.NewAttrLookupError(styleable, attr.Name)
}
