package binfmt

import (
	"encoding/binary"
	"unicode/utf16"
)

// fixture builds binary catalog fragments for tests: length-prefixed
// strings and arrays, plain records, and patchable headers, all addressed
// by absolute offset the way the real format is.
type fixture struct {
	buf []byte
}

func (f *fixture) appendU32(v uint32) uint32 {
	off := uint32(len(f.buf))
	f.buf = binary.LittleEndian.AppendUint32(f.buf, v)
	return off
}

func (f *fixture) patchU32(at, v uint32) {
	binary.LittleEndian.PutUint32(f.buf[at:], v)
}

// str appends a length-prefixed single-byte string and returns the payload
// offset (the length word sits at offset-4).
func (f *fixture) str(s string) uint32 {
	f.appendU32(uint32(len(s)))
	off := uint32(len(f.buf))
	f.buf = append(f.buf, s...)
	return off
}

// utf16str appends a length-prefixed UTF-16LE string and returns the
// payload offset with the unicode flag already set.
func (f *fixture) utf16str(s string) uint32 {
	units := utf16.Encode([]rune(s))
	f.appendU32(uint32(len(units) * 2))
	off := uint32(len(f.buf))
	for _, u := range units {
		f.buf = append(f.buf, byte(u), byte(u>>8))
	}
	return off | flagUnicode
}

// array appends a length-prefixed offset array and returns the payload
// offset.
func (f *fixture) array(vals ...uint32) uint32 {
	f.appendU32(uint32(len(vals) * 4))
	off := uint32(len(f.buf))
	for _, v := range vals {
		f.appendU32(v)
	}
	return off
}

// record appends raw 32-bit fields and returns the record's offset.
func (f *fixture) record(fields ...uint32) uint32 {
	off := uint32(len(f.buf))
	for _, v := range fields {
		f.appendU32(v)
	}
	return off
}

func (f *fixture) bytes(b []byte) uint32 {
	off := uint32(len(f.buf))
	f.buf = append(f.buf, b...)
	return off
}

// serializedType appends the two strings and the descriptor record of a
// serialized type and returns the record offset.
func (f *fixture) serializedType(assembly, class string) uint32 {
	asmOff := f.str(assembly)
	clsOff := f.str(class)
	return f.record(asmOff, clsOff)
}

// value appends a (typeDescriptor, value) record.
func (f *fixture) value(typeOff, valueOff uint32) uint32 {
	return f.record(typeOff, valueOff)
}

// headerFixture starts a catalog with a patchable header. Field indices
// follow header order: keys, id, instanceProvider, sceneProvider,
// initObjects, buildResultHash.
type headerFixture struct {
	fixture
	fields int
}

func newHeaderFixture(magic, version uint32, fields int) *headerFixture {
	h := &headerFixture{fields: fields}
	h.appendU32(magic)
	h.appendU32(version)
	for i := 0; i < fields; i++ {
		h.appendU32(Sentinel)
	}
	return h
}

func (h *headerFixture) setField(i int, off uint32) {
	h.patchU32(uint32(8+4*i), off)
}
