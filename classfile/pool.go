package classfile

import (
	"encoding/binary"
	"strconv"
	"unicode/utf8"

	"github.com/teranos/resgen/errors"
)

// Constant pool tags
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

const maxPoolEntries = 0xFFFF

// pool builds a deduplicated constant pool. Index 0 is unused per the format.
type pool struct {
	entries [][]byte
	index   map[string]uint16
	err     error
}

func newPool() *pool {
	return &pool{index: make(map[string]uint16)}
}

func (p *pool) add(key string, entry []byte) uint16 {
	if idx, ok := p.index[key]; ok {
		return idx
	}
	if len(p.entries)+1 >= maxPoolEntries {
		if p.err == nil {
			p.err = errors.Newf("constant pool overflow (%d entries)", len(p.entries))
		}
		return 0
	}
	p.entries = append(p.entries, entry)
	idx := uint16(len(p.entries))
	p.index[key] = idx
	return idx
}

func (p *pool) utf8(s string) uint16 {
	enc := modifiedUTF8(s)
	if len(enc) > 0xFFFF {
		if p.err == nil {
			p.err = errors.Newf("constant too long: %d bytes", len(enc))
		}
		return 0
	}
	entry := make([]byte, 3, 3+len(enc))
	entry[0] = tagUtf8
	binary.BigEndian.PutUint16(entry[1:], uint16(len(enc)))
	return p.add("u:"+s, append(entry, enc...))
}

func (p *pool) class(name string) uint16 {
	ref := p.utf8(name)
	return p.add("c:"+name, ref2(tagClass, ref))
}

func (p *pool) integer(v int32) uint16 {
	entry := make([]byte, 5)
	entry[0] = tagInteger
	binary.BigEndian.PutUint32(entry[1:], uint32(v))
	return p.add("i:"+strconv.FormatInt(int64(v), 10), entry)
}

func (p *pool) nameAndType(name, desc string) uint16 {
	n, d := p.utf8(name), p.utf8(desc)
	return p.add("nt:"+name+":"+desc, ref4(tagNameAndType, n, d))
}

func (p *pool) fieldref(owner, name, desc string) uint16 {
	c, nt := p.class(owner), p.nameAndType(name, desc)
	return p.add("f:"+owner+"."+name+":"+desc, ref4(tagFieldref, c, nt))
}

func (p *pool) methodref(owner, name, desc string) uint16 {
	c, nt := p.class(owner), p.nameAndType(name, desc)
	return p.add("m:"+owner+"."+name+":"+desc, ref4(tagMethodref, c, nt))
}

func ref2(tag byte, a uint16) []byte {
	return []byte{tag, byte(a >> 8), byte(a)}
}

func ref4(tag byte, a, b uint16) []byte {
	return []byte{tag, byte(a >> 8), byte(a), byte(b >> 8), byte(b)}
}

// modifiedUTF8 encodes s the way the JVM stores strings: NUL as two bytes and
// supplementary characters as surrogate pairs.
func modifiedUTF8(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r < 0x10000:
			out = append(out, 0xE0|byte(r>>12), 0x80|byte((r>>6)&0x3F), 0x80|byte(r&0x3F))
		default:
			r -= 0x10000
			for _, u := range []rune{0xD800 + (r >> 10), 0xDC00 + (r & 0x3FF)} {
				out = append(out, 0xE0|byte(u>>12), 0x80|byte((u>>6)&0x3F), 0x80|byte(u&0x3F))
			}
		}
	}
	return out
}

// decodeModifiedUTF8 reverses modifiedUTF8. Malformed input is decoded
// leniently with replacement characters.
func decodeModifiedUTF8(b []byte) string {
	runes := make([]rune, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			runes = append(runes, rune(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			runes = append(runes, rune(c&0x1F)<<6|rune(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			runes = append(runes, rune(c&0x0F)<<12|rune(b[i+1]&0x3F)<<6|rune(b[i+2]&0x3F))
			i += 3
		default:
			runes = append(runes, utf8.RuneError)
			i++
		}
	}
	// Recombine surrogate pairs
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r >= 0xD800 && r < 0xDC00 && i+1 < len(runes) && runes[i+1] >= 0xDC00 && runes[i+1] < 0xE000 {
			out = append(out, 0x10000+(r-0xD800)<<10+(runes[i+1]-0xDC00))
			i++
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
