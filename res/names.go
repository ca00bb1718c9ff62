package res

import "strings"

// FrameworkPackage is the package prefix of platform attributes ("android:textColor").
const FrameworkPackage = "android"

var fieldNameReplacer = strings.NewReplacer(".", "_", "-", "_", ":", "_")

// FieldName normalizes a resource name into a valid Java field name.
// Android allows '.' and '-' in resource names; qualified attribute names
// carry a "package:" prefix.
func FieldName(name string) string {
	return fieldNameReplacer.Replace(strings.TrimSpace(name))
}

// SplitQualified splits "pkg:name" into its package and bare name.
// Unqualified names return an empty package.
func SplitQualified(name string) (pkg, bare string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// IsFramework reports whether a qualified name belongs to the platform package.
func IsFramework(name string) bool {
	pkg, _ := SplitQualified(name)
	return pkg == FrameworkPackage
}

// PackageDir converts a dot-separated Java package into a slash-separated
// relative directory.
func PackageDir(javaPackage string) string {
	return strings.ReplaceAll(javaPackage, ".", "/")
}

// ValidPackage reports whether javaPackage is a dot-separated sequence of
// Java identifiers.
func ValidPackage(javaPackage string) bool {
	if javaPackage == "" {
		return false
	}
	for _, part := range strings.Split(javaPackage, ".") {
		if !validIdentifier(part) {
			return false
		}
	}
	return true
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
