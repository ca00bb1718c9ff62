package classfile

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/teranos/resgen/errors"
)

const magic = 0xCAFEBABE

// Opcodes used by resource class initializers
const (
	opIconstM1      = 0x02
	opIconst0       = 0x03
	opIconst5       = 0x08
	opBipush        = 0x10
	opSipush        = 0x11
	opLdc           = 0x12
	opLdcW          = 0x13
	opAload0        = 0x2a
	opIastore       = 0x4f
	opDup           = 0x59
	opReturn        = 0xb1
	opPutstatic     = 0xb3
	opInvokespecial = 0xb7
	opNewarray      = 0xbc
)

// newarray element type for int
const tInt = 10

const maxCodeLength = 0xFFFF

// bytesWriter writes big-endian primitives; class files are big-endian
// throughout.
type bytesWriter struct {
	bytes.Buffer
}

func (w *bytesWriter) writeUint8(v uint8) {
	w.WriteByte(v)
}

func (w *bytesWriter) writeUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.Write(b[:])
}

func (w *bytesWriter) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

type method struct {
	access    uint16
	name      string
	desc      string
	maxStack  uint16
	maxLocals uint16
	code      []byte
}

// Encode writes the class file to w.
func (c *Class) Encode(w io.Writer) error {
	data, err := c.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// MarshalBinary returns the class file bytes.
func (c *Class) MarshalBinary() ([]byte, error) {
	if c.Name == "" {
		return nil, errors.New("class has no name")
	}
	super := c.Super
	if super == "" {
		super = ObjectClass
	}

	p := newPool()
	thisIdx := p.class(c.Name)
	superIdx := p.class(super)

	methods := []method{constructor(p, super)}
	clinit, err := c.staticInitializer(p)
	if err != nil {
		return nil, err
	}
	if clinit != nil {
		methods = append(methods, *clinit)
	}

	// Intern everything the body references before the pool is written
	type fieldRefs struct{ name, desc, constVal uint16 }
	refs := make([]fieldRefs, len(c.Fields))
	var constantValueAttr uint16
	for i, f := range c.Fields {
		refs[i].name = p.utf8(f.Name)
		refs[i].desc = p.utf8(f.Descriptor())
		if f.constant() {
			if constantValueAttr == 0 {
				constantValueAttr = p.utf8("ConstantValue")
			}
			refs[i].constVal = p.integer(f.Value)
		}
	}
	type methodRefs struct{ name, desc uint16 }
	mrefs := make([]methodRefs, len(methods))
	codeAttr := p.utf8("Code")
	for i, m := range methods {
		mrefs[i] = methodRefs{p.utf8(m.name), p.utf8(m.desc)}
	}
	type innerRefs struct{ inner, outer, name uint16 }
	irefs := make([]innerRefs, len(c.InnerClasses))
	var innerAttr uint16
	if len(c.InnerClasses) > 0 {
		innerAttr = p.utf8("InnerClasses")
		for i, ic := range c.InnerClasses {
			irefs[i].inner = p.class(ic.Inner)
			if ic.Outer != "" {
				irefs[i].outer = p.class(ic.Outer)
			}
			if ic.Name != "" {
				irefs[i].name = p.utf8(ic.Name)
			}
		}
	}
	if p.err != nil {
		return nil, errors.Wrapf(p.err, "encoding %s", c.Name)
	}

	w := &bytesWriter{}
	w.writeUint32(magic)
	w.writeUint16(MinorVersion)
	w.writeUint16(MajorVersion)

	w.writeUint16(uint16(len(p.entries) + 1))
	for _, e := range p.entries {
		w.Write(e)
	}

	w.writeUint16(c.Access)
	w.writeUint16(thisIdx)
	w.writeUint16(superIdx)
	w.writeUint16(0) // interfaces

	w.writeUint16(uint16(len(c.Fields)))
	for i, f := range c.Fields {
		w.writeUint16(f.Access)
		w.writeUint16(refs[i].name)
		w.writeUint16(refs[i].desc)
		if refs[i].constVal != 0 {
			w.writeUint16(1)
			w.writeUint16(constantValueAttr)
			w.writeUint32(2)
			w.writeUint16(refs[i].constVal)
		} else {
			w.writeUint16(0)
		}
	}

	w.writeUint16(uint16(len(methods)))
	for i, m := range methods {
		w.writeUint16(m.access)
		w.writeUint16(mrefs[i].name)
		w.writeUint16(mrefs[i].desc)
		w.writeUint16(1)
		w.writeUint16(codeAttr)
		w.writeUint32(uint32(12 + len(m.code)))
		w.writeUint16(m.maxStack)
		w.writeUint16(m.maxLocals)
		w.writeUint32(uint32(len(m.code)))
		w.Write(m.code)
		w.writeUint16(0) // exception table
		w.writeUint16(0) // code attributes
	}

	if innerAttr != 0 {
		w.writeUint16(1)
		w.writeUint16(innerAttr)
		w.writeUint32(uint32(2 + 8*len(c.InnerClasses)))
		w.writeUint16(uint16(len(c.InnerClasses)))
		for i, ic := range c.InnerClasses {
			w.writeUint16(irefs[i].inner)
			w.writeUint16(irefs[i].outer)
			w.writeUint16(irefs[i].name)
			w.writeUint16(ic.Access)
		}
	} else {
		w.writeUint16(0)
	}

	return w.Bytes(), nil
}

func constructor(p *pool, super string) method {
	init := p.methodref(super, "<init>", "()V")
	return method{
		access:    AccPublic,
		name:      "<init>",
		desc:      "()V",
		maxStack:  1,
		maxLocals: 1,
		code:      []byte{opAload0, opInvokespecial, byte(init >> 8), byte(init), opReturn},
	}
}

// staticInitializer assigns every non-constant field. It returns nil when
// all fields are compile-time constants.
func (c *Class) staticInitializer(p *pool) (*method, error) {
	code := &bytesWriter{}
	var maxStack uint16
	for _, f := range c.Fields {
		if f.constant() {
			continue
		}
		ref := p.fieldref(c.Name, f.Name, f.Descriptor())
		if !f.Array {
			pushInt(code, p, f.Value)
			maxStack = max(maxStack, 1)
		} else {
			pushInt(code, p, int32(len(f.Values)))
			code.writeUint8(opNewarray)
			code.writeUint8(tInt)
			maxStack = max(maxStack, 1)
			for i, v := range f.Values {
				code.writeUint8(opDup)
				pushInt(code, p, int32(i))
				pushInt(code, p, v)
				code.writeUint8(opIastore)
				maxStack = max(maxStack, 4)
			}
		}
		code.writeUint8(opPutstatic)
		code.writeUint16(ref)
	}
	if code.Len() == 0 {
		return nil, nil
	}
	code.writeUint8(opReturn)
	if code.Len() > maxCodeLength {
		return nil, errors.Newf("static initializer of %s is %d bytes, limit is %d", c.Name, code.Len(), maxCodeLength)
	}
	return &method{
		access:   AccStatic,
		name:     "<clinit>",
		desc:     "()V",
		maxStack: maxStack,
		code:     code.Bytes(),
	}, nil
}

// pushInt emits the shortest instruction that pushes v.
func pushInt(w *bytesWriter, p *pool, v int32) {
	switch {
	case v >= -1 && v <= 5:
		w.writeUint8(byte(opIconst0 + v))
	case v >= -128 && v <= 127:
		w.writeUint8(opBipush)
		w.writeUint8(byte(int8(v)))
	case v >= -32768 && v <= 32767:
		w.writeUint8(opSipush)
		w.writeUint16(uint16(int16(v)))
	default:
		idx := p.integer(v)
		if idx <= 0xFF {
			w.writeUint8(opLdc)
			w.writeUint8(byte(idx))
		} else {
			w.writeUint8(opLdcW)
			w.writeUint16(idx)
		}
	}
}
