package catalogreader

import (
	"encoding/binary"
	"testing"

	"github.com/addrkit/catalog-reader/binfmt"
)

func binaryHeader(magic uint32) []byte {
	buf := binary.LittleEndian.AppendUint32(nil, magic)
	buf = binary.LittleEndian.AppendUint32(buf, 2)
	for i := 0; i < 6; i++ {
		buf = binary.LittleEndian.AppendUint32(buf, binfmt.Sentinel)
	}
	return buf
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"binary magic", binaryHeader(binfmt.Magic), FormatBinary},
		{"reversed magic", binaryHeader(binfmt.MagicReversed), FormatBinary},
		{"json object", []byte(`{"m_LocatorId":"x"}`), FormatJSON},
		{"arbitrary text", []byte("hello world"), FormatJSON},
		{"too short", []byte{0x42, 0x89}, FormatUnknown},
		{"empty", nil, FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.data); got != tt.want {
				t.Errorf("DetectFormat = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		f    Format
		want string
	}{
		{FormatJSON, "json"},
		{FormatBinary, "binary"},
		{FormatUnknown, "unknown"},
		{Format(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.f), got, tt.want)
		}
	}
}

func TestDecodeBinary(t *testing.T) {
	cat, err := Decode(binaryHeader(binfmt.Magic))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cat.SchemaVersion != 2 {
		t.Errorf("SchemaVersion = %d, want 2", cat.SchemaVersion)
	}
}

func TestDecodeJSON(t *testing.T) {
	raw := []byte(`{
		"m_LocatorId": "AddressablesMainContentCatalog",
		"m_KeyDataString": "AAAAAA==",
		"m_EntryDataString": "AAAAAA==",
		"m_ExtraDataString": "",
		"m_BucketDataString": "AAAAAA=="
	}`)
	cat, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cat.SchemaVersion != 1 {
		t.Errorf("SchemaVersion = %d, want 1", cat.SchemaVersion)
	}
	if cat.LocatorID != "AddressablesMainContentCatalog" {
		t.Errorf("LocatorID = %q", cat.LocatorID)
	}
	if len(cat.Locations) != 0 {
		t.Errorf("Locations = %d, want 0", len(cat.Locations))
	}
}
