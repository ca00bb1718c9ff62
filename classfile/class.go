// Package classfile reads and writes the small subset of the JVM class file
// format needed for resource classes: classes whose only members are int and
// int[] static fields, a default constructor and a static initializer.
//
// Scalar fields marked final are written with a ConstantValue attribute, the
// way javac compiles compile-time constants. Everything else is assigned in
// <clinit>, which leaves the values patchable by later build steps.
package classfile

// Access flags
const (
	AccPublic = 0x0001
	AccStatic = 0x0008
	AccFinal  = 0x0010
	AccSuper  = 0x0020
)

// Version written by Encode (Java 7). Resource classes have no branches, so
// no StackMapTable is required.
const (
	MajorVersion = 51
	MinorVersion = 0
)

// Field descriptors
const (
	DescInt      = "I"
	DescIntArray = "[I"
)

// ObjectClass is the default super class.
const ObjectClass = "java/lang/Object"

// Field is a static int or int[] field.
type Field struct {
	Name   string
	Access uint16
	// Array selects the int[] descriptor; Values holds its elements.
	Array  bool
	Value  int32
	Values []int32
}

// Descriptor returns the JVM field descriptor.
func (f Field) Descriptor() string {
	if f.Array {
		return DescIntArray
	}
	return DescInt
}

// constant reports whether the field is written as a ConstantValue.
func (f Field) constant() bool {
	return !f.Array && f.Access&AccFinal != 0 && f.Access&AccStatic != 0
}

// InnerClass is one entry of the InnerClasses attribute.
type InnerClass struct {
	Inner  string // internal name, e.g. com/example/R$string
	Outer  string // internal name, e.g. com/example/R
	Name   string // simple name, e.g. string
	Access uint16
}

// Class is a resource class in internal-name form (slashes, '$' for nesting).
type Class struct {
	Name         string
	Super        string
	Access       uint16
	Fields       []Field
	InnerClasses []InnerClass
}

// Field returns the field with the given name.
func (c *Class) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
