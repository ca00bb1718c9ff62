package classfile

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/teranos/resgen/errors"
)

type cpEntry struct {
	tag  byte
	a, b uint16
	i    int32
	s    string
}

type bytesReader struct {
	*bytes.Reader
	err error
}

func (r *bytesReader) readN(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.Len() {
		r.err = errors.New("truncated class file")
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		r.err = errors.Wrap(err, "truncated class file")
		return nil
	}
	return buf
}

func (r *bytesReader) readUint8() uint8 {
	b := r.readN(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *bytesReader) readUint16() uint16 {
	b := r.readN(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *bytesReader) readUint32() uint32 {
	b := r.readN(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Decode parses a class file and recovers static int and int[] field values
// from ConstantValue attributes and from the static initializer.
// Fields of other descriptors are skipped.
func Decode(r io.Reader) (*Class, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading class file")
	}
	return Parse(data)
}

// Parse is Decode over an in-memory class file.
func Parse(data []byte) (*Class, error) {
	br := &bytesReader{Reader: bytes.NewReader(data)}
	if br.readUint32() != magic {
		if br.err != nil {
			return nil, br.err
		}
		return nil, errors.New("not a class file: bad magic")
	}
	br.readUint16() // minor
	br.readUint16() // major

	cp, err := readPool(br)
	if err != nil {
		return nil, err
	}

	c := &Class{}
	c.Access = br.readUint16()
	c.Name = cp.className(br.readUint16())
	c.Super = cp.className(br.readUint16())
	ifaces := br.readUint16()
	for i := uint16(0); i < ifaces; i++ {
		br.readUint16()
	}

	fieldCount := br.readUint16()
	for i := uint16(0); i < fieldCount && br.err == nil; i++ {
		access := br.readUint16()
		name := cp.utf8(br.readUint16())
		desc := cp.utf8(br.readUint16())
		f := Field{Name: name, Access: access, Array: desc == DescIntArray}
		keep := desc == DescInt || desc == DescIntArray
		attrCount := br.readUint16()
		for j := uint16(0); j < attrCount && br.err == nil; j++ {
			attrName := cp.utf8(br.readUint16())
			body := br.readN(int(br.readUint32()))
			if attrName == "ConstantValue" && len(body) == 2 && desc == DescInt {
				e := cp.entry(binary.BigEndian.Uint16(body))
				if e.tag == tagInteger {
					f.Value = e.i
				}
			}
		}
		if keep {
			c.Fields = append(c.Fields, f)
		}
	}

	methodCount := br.readUint16()
	for i := uint16(0); i < methodCount && br.err == nil; i++ {
		br.readUint16() // access
		name := cp.utf8(br.readUint16())
		br.readUint16() // descriptor
		attrCount := br.readUint16()
		for j := uint16(0); j < attrCount && br.err == nil; j++ {
			attrName := cp.utf8(br.readUint16())
			body := br.readN(int(br.readUint32()))
			if name == "<clinit>" && attrName == "Code" {
				if err := c.runInitializer(cp, body); err != nil {
					return nil, err
				}
			}
		}
	}

	attrCount := br.readUint16()
	for i := uint16(0); i < attrCount && br.err == nil; i++ {
		attrName := cp.utf8(br.readUint16())
		body := br.readN(int(br.readUint32()))
		if attrName == "InnerClasses" && len(body) >= 2 {
			n := int(binary.BigEndian.Uint16(body))
			for k := 0; k < n && 2+8*(k+1) <= len(body); k++ {
				rec := body[2+8*k:]
				c.InnerClasses = append(c.InnerClasses, InnerClass{
					Inner:  cp.className(binary.BigEndian.Uint16(rec[0:])),
					Outer:  cp.className(binary.BigEndian.Uint16(rec[2:])),
					Name:   cp.utf8(binary.BigEndian.Uint16(rec[4:])),
					Access: binary.BigEndian.Uint16(rec[6:]),
				})
			}
		}
	}
	if br.err != nil {
		return nil, br.err
	}
	return c, nil
}

type constantPool []cpEntry

func readPool(br *bytesReader) (constantPool, error) {
	count := br.readUint16()
	cp := make(constantPool, count)
	for i := 1; i < int(count); i++ {
		tag := br.readUint8()
		e := cpEntry{tag: tag}
		switch tag {
		case tagUtf8:
			e.s = decodeModifiedUTF8(br.readN(int(br.readUint16())))
		case tagInteger:
			e.i = int32(br.readUint32())
		case tagFloat:
			br.readUint32()
		case tagLong, tagDouble:
			br.readUint32()
			br.readUint32()
			cp[i] = e
			i++ // eight-byte constants take two slots
			continue
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			e.a = br.readUint16()
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			e.a = br.readUint16()
			e.b = br.readUint16()
		case tagMethodHandle:
			br.readUint8()
			e.a = br.readUint16()
		default:
			if br.err != nil {
				return nil, br.err
			}
			return nil, errors.Newf("unknown constant pool tag %d at index %d", tag, i)
		}
		if br.err != nil {
			return nil, br.err
		}
		cp[i] = e
	}
	return cp, br.err
}

func (cp constantPool) entry(idx uint16) cpEntry {
	if int(idx) >= len(cp) {
		return cpEntry{}
	}
	return cp[idx]
}

func (cp constantPool) utf8(idx uint16) string {
	return cp.entry(idx).s
}

func (cp constantPool) className(idx uint16) string {
	e := cp.entry(idx)
	if e.tag != tagClass {
		return ""
	}
	return cp.utf8(e.a)
}

// fieldref resolves a Fieldref entry to owner and field name.
func (cp constantPool) fieldref(idx uint16) (owner, name string) {
	e := cp.entry(idx)
	if e.tag != tagFieldref {
		return "", ""
	}
	nt := cp.entry(e.b)
	return cp.className(e.a), cp.utf8(nt.a)
}

type stackValue struct {
	i   int32
	arr []int32
	ref bool
}

// runInitializer interprets the straight-line subset of bytecode that
// resource class initializers consist of.
func (c *Class) runInitializer(cp constantPool, attr []byte) error {
	if len(attr) < 8 {
		return errors.New("truncated Code attribute")
	}
	codeLen := int(binary.BigEndian.Uint32(attr[4:8]))
	if 8+codeLen > len(attr) {
		return errors.New("truncated Code attribute")
	}
	code := attr[8 : 8+codeLen]

	var stack []stackValue
	pop := func() (stackValue, error) {
		if len(stack) == 0 {
			return stackValue{}, errors.Newf("%s.<clinit>: stack underflow", c.Name)
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}
	u16 := func(pc int) (uint16, error) {
		if pc+2 >= len(code) {
			return 0, errors.Newf("%s.<clinit>: truncated instruction at %d", c.Name, pc)
		}
		return binary.BigEndian.Uint16(code[pc+1:]), nil
	}

	for pc := 0; pc < len(code); {
		op := code[pc]
		switch {
		case op >= opIconstM1 && op <= opIconst5:
			stack = append(stack, stackValue{i: int32(op) - opIconst0})
			pc++
		case op == opBipush:
			if pc+1 >= len(code) {
				return errors.Newf("%s.<clinit>: truncated bipush", c.Name)
			}
			stack = append(stack, stackValue{i: int32(int8(code[pc+1]))})
			pc += 2
		case op == opSipush:
			v, err := u16(pc)
			if err != nil {
				return err
			}
			stack = append(stack, stackValue{i: int32(int16(v))})
			pc += 3
		case op == opLdc || op == opLdcW:
			var idx uint16
			if op == opLdc {
				if pc+1 >= len(code) {
					return errors.Newf("%s.<clinit>: truncated ldc", c.Name)
				}
				idx = uint16(code[pc+1])
				pc += 2
			} else {
				v, err := u16(pc)
				if err != nil {
					return err
				}
				idx = v
				pc += 3
			}
			e := cp.entry(idx)
			if e.tag != tagInteger {
				return errors.Newf("%s.<clinit>: ldc of non-integer constant #%d", c.Name, idx)
			}
			stack = append(stack, stackValue{i: e.i})
		case op == opNewarray:
			n, err := pop()
			if err != nil {
				return err
			}
			if n.ref || n.i < 0 {
				return errors.Newf("%s.<clinit>: bad array length", c.Name)
			}
			stack = append(stack, stackValue{arr: make([]int32, n.i), ref: true})
			pc += 2
		case op == opDup:
			if len(stack) == 0 {
				return errors.Newf("%s.<clinit>: stack underflow", c.Name)
			}
			stack = append(stack, stack[len(stack)-1])
			pc++
		case op == opIastore:
			v, err := pop()
			if err != nil {
				return err
			}
			i, err := pop()
			if err != nil {
				return err
			}
			a, err := pop()
			if err != nil {
				return err
			}
			if !a.ref || i.i < 0 || int(i.i) >= len(a.arr) {
				return errors.Newf("%s.<clinit>: bad iastore", c.Name)
			}
			a.arr[i.i] = v.i
			pc++
		case op == opPutstatic:
			idx, err := u16(pc)
			if err != nil {
				return err
			}
			v, err := pop()
			if err != nil {
				return err
			}
			owner, name := cp.fieldref(idx)
			if owner == c.Name {
				c.assign(name, v)
			}
			pc += 3
		case op == opReturn:
			return nil
		default:
			return errors.Newf("%s.<clinit>: unsupported opcode 0x%02x at %d", c.Name, op, pc)
		}
	}
	return nil
}

func (c *Class) assign(name string, v stackValue) {
	for i := range c.Fields {
		if c.Fields[i].Name != name {
			continue
		}
		if v.ref {
			c.Fields[i].Values = v.arr
		} else {
			c.Fields[i].Value = v.i
		}
		return
	}
}
