package catalogreader

import (
	"github.com/addrkit/catalog-reader/binfmt"
	"github.com/addrkit/catalog-reader/catalog"
	"github.com/addrkit/catalog-reader/jsonfmt"
)

// Format identifies the on-disk encoding of a catalog file.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatBinary
)

// String returns a human-readable format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// DetectFormat sniffs the catalog encoding from the leading four bytes.
// Either byte order of the binary magic selects the binary parser; anything
// else is treated as JSON text.
func DetectFormat(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}
	magic := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	if magic == binfmt.Magic || magic == binfmt.MagicReversed {
		return FormatBinary
	}
	return FormatJSON
}

// Decode sniffs the encoding of data and parses it into the canonical
// catalog model. The returned catalog is fully populated; no partial or
// streaming state escapes a failed decode.
func Decode(data []byte) (*catalog.Catalog, error) {
	if DetectFormat(data) == FormatBinary {
		return binfmt.Parse(data)
	}
	return jsonfmt.Parse(data)
}
