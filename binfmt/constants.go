package binfmt

// Binary catalog magic number. Catalogs in the wild carry the value in
// either byte order; both select the binary parser.
const (
	// Magic is the binary catalog magic number in little-endian order.
	Magic uint32 = 0x0DE38942

	// MagicReversed is the byte-reversed form of Magic, also accepted.
	MagicReversed uint32 = 0x4289E30D
)

// Sentinel is the reserved offset value meaning "field absent" everywhere an
// offset appears.
const Sentinel uint32 = 0xFFFFFFFF

// String offset flag bits. The top two bits of a non-sentinel string offset
// carry the encoding and representation; the low 30 bits are the real file
// offset.
const (
	flagUnicode uint32 = 0x80000000 // UTF-16LE instead of single-byte text
	flagChained uint32 = 0x40000000 // offset-linked fragment chain
	offsetMask  uint32 = 0x3FFFFFFF
)

// Join separators supplied by each string context. Contexts that pass
// nullSeparator never honor the chained flag.
const (
	nullSeparator     = "\x00"
	keySeparator      = "/"
	providerSeparator = "."
	typeNameSeparator = "."
	bundleSeparator   = "_"
)

// Header size of the short version-1 layout. A version-1 catalog whose keys
// offset equals this size has no build-result-hash field in its header.
const shortHeaderSize = 32
