package rclass

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/teranos/resgen/classfile"
	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/res"
	"github.com/teranos/resgen/symbols"
)

// ReadClasses decodes the class files written by a Writer back into a
// table. Groups follow the InnerClasses order of R.class.
func ReadClasses(base, pkg string) (*symbols.Table, error) {
	dir := ClassDir(base, pkg)
	outer, err := readClass(filepath.Join(dir, ClassFile))
	if err != nil {
		return nil, err
	}

	table := &symbols.Table{}
	for _, ic := range outer.InnerClasses {
		if ic.Outer != outer.Name {
			continue
		}
		t, err := res.ParseType(ic.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: nested class %s", outer.Name, ic.Inner)
		}
		nested, err := readClass(filepath.Join(dir, filepath.Base(ic.Inner)+".class"))
		if err != nil {
			return nil, err
		}
		g := symbols.Group{Type: t}
		for _, f := range nested.Fields {
			field := symbols.Field{Name: f.Name, Value: f.Value}
			if f.Array {
				field.Value = 0
				field.Array = append(make([]int32, 0, len(f.Values)), f.Values...)
			}
			g.Fields = append(g.Fields, field)
		}
		table.Groups = append(table.Groups, g)
	}
	return table, nil
}

func readClass(path string) (*classfile.Class, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIOf(err, "failed to open %s", path)
	}
	defer f.Close()

	c, err := classfile.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}
	return c, nil
}

var (
	javaPackageLine = regexp.MustCompile(`^package ([\w.]+);$`)
	javaClassLine   = regexp.MustCompile(`^public static final class (\w+) \{$`)
	javaIntLine     = regexp.MustCompile(`^public static int (\w+) = 0x([0-9a-fA-F]+);$`)
	javaArrayLine   = regexp.MustCompile(`^public static int\[\] (\w+) = \{(.*)\};$`)
)

// ReadJava parses an R.java written by a Writer back into a table.
func ReadJava(path string) (*symbols.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIOf(err, "failed to read %s", path)
	}
	_, table, err := ParseJava(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return table, nil
}

// ParseJava parses R.java source and returns its package and table. Only
// the layout RenderJava produces is understood.
func ParseJava(data []byte) (string, *symbols.Table, error) {
	var pkg string
	table := &symbols.Table{}
	var current *symbols.Group

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if m := javaPackageLine.FindStringSubmatch(line); m != nil {
			pkg = m[1]
			continue
		}
		if m := javaClassLine.FindStringSubmatch(line); m != nil {
			t, err := res.ParseType(m[1])
			if err != nil {
				return "", nil, errors.Wrapf(err, "line %d", lineNo)
			}
			table.Groups = append(table.Groups, symbols.Group{Type: t})
			current = &table.Groups[len(table.Groups)-1]
			continue
		}
		if m := javaIntLine.FindStringSubmatch(line); m != nil {
			if current == nil {
				return "", nil, errors.Newf("line %d: field outside a nested class", lineNo)
			}
			v, err := parseHex(m[2])
			if err != nil {
				return "", nil, errors.Wrapf(err, "line %d", lineNo)
			}
			current.Fields = append(current.Fields, symbols.Field{Name: m[1], Value: v})
			continue
		}
		if m := javaArrayLine.FindStringSubmatch(line); m != nil {
			if current == nil {
				return "", nil, errors.Newf("line %d: field outside a nested class", lineNo)
			}
			values := make([]int32, 0)
			for _, part := range strings.Split(m[2], ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				v, err := parseHex(strings.TrimPrefix(part, "0x"))
				if err != nil {
					return "", nil, errors.Wrapf(err, "line %d", lineNo)
				}
				values = append(values, v)
			}
			current.Fields = append(current.Fields, symbols.Field{Name: m[1], Array: values})
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, errors.Wrap(err, "reading java source")
	}
	if pkg == "" {
		return "", nil, errors.New("no package declaration")
	}
	return pkg, table, nil
}

func parseHex(s string) (int32, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "bad hex value %q", s)
	}
	return int32(uint32(v)), nil
}
