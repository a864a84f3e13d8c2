package jsonfmt

import (
	"encoding/base64"
	"encoding/binary"
	"unicode/utf16"

	"github.com/goccy/go-json"
)

// blob accumulates little-endian serialized data for the base64 fields of
// a JSON catalog.
type blob struct {
	buf []byte
}

func (b *blob) u8(v uint8)   { b.buf = append(b.buf, v) }
func (b *blob) u32(v uint32) { b.buf = binary.LittleEndian.AppendUint32(b.buf, v) }
func (b *blob) i32(v int32)  { b.u32(uint32(v)) }

func (b *blob) base64() string {
	return base64.StdEncoding.EncodeToString(b.buf)
}

// keyTable serializes the key blob. The count is fixed up front; each add
// method records the key record's offset for bucket construction.
type keyTable struct {
	blob
	offsets []int32
}

func newKeyTable(count int) *keyTable {
	k := &keyTable{}
	k.u32(uint32(count))
	return k
}

func (k *keyTable) mark() {
	k.offsets = append(k.offsets, int32(len(k.buf)))
}

func (k *keyTable) ascii(s string) {
	k.mark()
	k.u8(objAsciiString)
	k.u32(uint32(len(s)))
	k.buf = append(k.buf, s...)
}

func (k *keyTable) unicode(s string) {
	k.mark()
	k.u8(objUnicodeString)
	units := utf16.Encode([]rune(s))
	k.u32(uint32(len(units) * 2))
	for _, u := range units {
		k.buf = append(k.buf, byte(u), byte(u>>8))
	}
}

func (k *keyTable) uint32Key(v uint32) {
	k.mark()
	k.u8(objUInt32)
	k.u32(v)
}

func (k *keyTable) int32Key(v int32) {
	k.mark()
	k.u8(objInt32)
	k.i32(v)
}

func (k *keyTable) unknown(kind uint8) {
	k.mark()
	k.u8(kind)
}

func bucketBlob(buckets []bucket) string {
	var b blob
	b.u32(uint32(len(buckets)))
	for _, bk := range buckets {
		b.i32(bk.offset)
		b.i32(int32(len(bk.entries)))
		for _, e := range bk.entries {
			b.i32(e)
		}
	}
	return b.base64()
}

func entryBlob(entries []entry) string {
	var b blob
	b.u32(uint32(len(entries)))
	for _, e := range entries {
		b.i32(e.internalID)
		b.i32(e.providerID)
		b.i32(e.dependencyKey)
		b.i32(e.dependencyHash)
		b.i32(e.extraData)
		b.i32(e.primaryKey)
		b.i32(e.resourceType)
	}
	return b.base64()
}

// extraTable serializes the extra-data blob of embedded JSON records.
type extraTable struct {
	blob
}

// jsonRecord appends a serialized JSON object record and returns its
// offset.
func (x *extraTable) jsonRecord(obj map[string]any) int32 {
	payload, err := json.Marshal(obj)
	if err != nil {
		panic(err)
	}
	return x.rawRecord(string(payload))
}

func (x *extraTable) rawRecord(payload string) int32 {
	off := int32(len(x.buf))
	x.u8(objJSONObject)
	const assembly = "Unity.ResourceManager"
	const class = "UnityEngine.ResourceManagement.ResourceProviders.AssetBundleRequestOptions"
	x.u8(uint8(len(assembly)))
	x.buf = append(x.buf, assembly...)
	x.u8(uint8(len(class)))
	x.buf = append(x.buf, class...)

	units := utf16.Encode([]rune(payload))
	x.i32(int32(len(units) * 2))
	for _, u := range units {
		x.buf = append(x.buf, byte(u), byte(u>>8))
	}
	return off
}

func emptyExtraBlob() string {
	var b blob
	return b.base64()
}
