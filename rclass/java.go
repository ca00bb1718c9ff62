package rclass

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/teranos/resgen/res"
	"github.com/teranos/resgen/symbols"
)

// JavaFile is the name of the generated source file.
const JavaFile = "R.java"

const javaHeader = `/* AUTO-GENERATED FILE.  DO NOT MODIFY.
 *
 * This class was automatically generated by the
 * resgen tool from the resource data it found.  It
 * should not be modified by hand.
 */
`

// RenderJava returns the R.java source for table in package pkg.
func RenderJava(table *symbols.Table, pkg string) []byte {
	var sb strings.Builder

	sb.WriteString(javaHeader)
	sb.WriteString(fmt.Sprintf("package %s;\n", pkg))
	sb.WriteString("public final class R {\n")
	for _, g := range table.Groups {
		sb.WriteString(fmt.Sprintf("    public static final class %s {\n", g.Type))
		for _, f := range g.Fields {
			writeJavaField(&sb, f)
		}
		sb.WriteString("    }\n")
	}
	sb.WriteString("}")

	return []byte(sb.String())
}

func writeJavaField(sb *strings.Builder, f symbols.Field) {
	if !f.IsArray() {
		sb.WriteString(fmt.Sprintf("        public static int %s = 0x%x;\n", f.Name, uint32(f.Value)))
		return
	}
	values := make([]string, len(f.Array))
	for i, v := range f.Array {
		values[i] = fmt.Sprintf("0x%x", uint32(v))
	}
	sb.WriteString(fmt.Sprintf("        public static int[] %s = { %s };\n", f.Name, strings.Join(values, ", ")))
}

// JavaPath returns where WriteJava places R.java.
func JavaPath(base, pkg string) string {
	return filepath.Join(base, res.PackageDir(pkg), JavaFile)
}

// stageJava stages <base>/<pkg dir>/R.java in tx and returns its path
func stageJava(tx *transaction, table *symbols.Table, base, pkg string) (string, error) {
	path := JavaPath(base, pkg)
	if err := tx.stage(path, RenderJava(table, pkg)); err != nil {
		return "", err
	}
	return path, nil
}
