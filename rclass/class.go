package rclass

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/resgen/classfile"
	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/res"
	"github.com/teranos/resgen/symbols"
)

// ClassFile is the name of the generated outer class file.
const ClassFile = "R.class"

const (
	outerAccess = classfile.AccPublic | classfile.AccFinal | classfile.AccSuper
	// access of a nested class as recorded in InnerClasses
	nestedAccess = classfile.AccPublic | classfile.AccStatic | classfile.AccFinal
	// fields stay non-final so later build steps can rewrite their values
	fieldAccess = classfile.AccPublic | classfile.AccStatic
)

func internalName(pkg string) string {
	return res.PackageDir(pkg) + "/R"
}

func nestedName(pkg string, t res.Type) string {
	return internalName(pkg) + "$" + t.String()
}

// Classes builds the outer R class followed by one nested class per group.
func Classes(table *symbols.Table, pkg string) []*classfile.Class {
	outer := &classfile.Class{
		Name:   internalName(pkg),
		Super:  classfile.ObjectClass,
		Access: outerAccess,
	}
	classes := []*classfile.Class{outer}

	for _, g := range table.Groups {
		inner := classfile.InnerClass{
			Inner:  nestedName(pkg, g.Type),
			Outer:  outer.Name,
			Name:   g.Type.String(),
			Access: nestedAccess,
		}
		outer.InnerClasses = append(outer.InnerClasses, inner)

		nested := &classfile.Class{
			Name:         inner.Inner,
			Super:        classfile.ObjectClass,
			Access:       classfile.AccPublic | classfile.AccFinal | classfile.AccSuper,
			InnerClasses: []classfile.InnerClass{inner},
		}
		for _, f := range g.Fields {
			nested.Fields = append(nested.Fields, classfile.Field{
				Name:   f.Name,
				Access: fieldAccess,
				Array:  f.IsArray(),
				Value:  f.Value,
				Values: f.Array,
			})
		}
		classes = append(classes, nested)
	}
	return classes
}

// ClassDir returns the directory WriteClasses writes into.
func ClassDir(base, pkg string) string {
	return filepath.Join(base, res.PackageDir(pkg))
}

// stageClasses stages R.class and one R$<type>.class per group under
// <base>/<pkg dir>/ and schedules removal of nested class files for types the
// table no longer has. It returns the staged paths, outer class first.
func stageClasses(tx *transaction, table *symbols.Table, base, pkg string) ([]string, error) {
	dir := ClassDir(base, pkg)
	classes := Classes(table, pkg)

	paths := make([]string, 0, len(classes))
	for _, c := range classes {
		data, err := c.MarshalBinary()
		if err != nil {
			return nil, errors.WrapIOf(err, "failed to encode %s", c.Name)
		}
		path := filepath.Join(dir, filepath.Base(c.Name)+".class")
		if err := tx.stage(path, data); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	stale, err := StaleClasses(table, base, pkg)
	if err != nil {
		return nil, err
	}
	for _, path := range stale {
		tx.remove(path)
	}
	return paths, nil
}

// StaleClasses lists the R$<type>.class files in the package directory whose
// type has no group in table. Files that do not name a resource type are not
// generated here and are left alone.
func StaleClasses(table *symbols.Table, base, pkg string) ([]string, error) {
	dir := ClassDir(base, pkg)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIOf(err, "failed to list %s", dir)
	}

	var stale []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name, ok := strings.CutPrefix(e.Name(), "R$")
		if !ok {
			continue
		}
		name, ok = strings.CutSuffix(name, ".class")
		if !ok {
			continue
		}
		t, err := res.ParseType(name)
		if err != nil {
			continue
		}
		if _, present := table.Group(t); !present {
			stale = append(stale, filepath.Join(dir, e.Name()))
		}
	}
	return stale, nil
}
