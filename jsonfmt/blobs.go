package jsonfmt

import (
	"strconv"

	"github.com/goccy/go-json"

	"github.com/addrkit/catalog-reader/errors"
	"github.com/addrkit/catalog-reader/internal/buffer"
)

// Serialized object kinds used inside the key and extra-data blobs.
const (
	objAsciiString   = 0
	objUnicodeString = 1
	objUInt16        = 2
	objUInt32        = 3
	objInt32         = 4
	objJSONObject    = 7
)

// bucket groups a key with the entry indices it addresses. The offset
// points at the key's serialized value inside the key blob.
type bucket struct {
	offset  int32
	entries []int32
}

// entry is the fixed-width location record of the entry blob: seven int32
// indices into the parallel lookup tables.
type entry struct {
	internalID     int32
	providerID     int32
	dependencyKey  int32
	dependencyHash int32
	extraData      int32
	primaryKey     int32
	resourceType   int32
}

func readBuckets(data []byte) ([]bucket, error) {
	r := buffer.NewReader(data)
	count, err := r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseParse, err)
	}
	buckets := make([]bucket, 0, count)
	for i := uint32(0); i < count; i++ {
		offset, err := r.ReadI32()
		if err != nil {
			return nil, errors.OutOfBounds(errors.PhaseParse, err)
		}
		entryCount, err := r.ReadI32()
		if err != nil {
			return nil, errors.OutOfBounds(errors.PhaseParse, err)
		}
		if entryCount < 0 {
			return nil, errors.InvalidData(errors.PhaseParse, []string{"buckets"},
				"negative entry count")
		}
		entries := make([]int32, entryCount)
		for j := range entries {
			if entries[j], err = r.ReadI32(); err != nil {
				return nil, errors.OutOfBounds(errors.PhaseParse, err)
			}
		}
		buckets = append(buckets, bucket{offset: offset, entries: entries})
	}
	return buckets, nil
}

// readKeys decodes each key's lexical value. Bucket i holds the blob offset
// of key i; scalar kinds render as their decimal form, and unknown kinds
// fall back to a positional name.
func readKeys(data []byte, buckets []bucket) ([]string, error) {
	r := buffer.NewReader(data)
	count, err := r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseParse, err)
	}
	keys := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if int(i) < len(buckets) {
			if err := r.Seek(int(buckets[i].offset)); err != nil {
				return nil, errors.OutOfBounds(errors.PhaseParse, err)
			}
		}
		kind, err := r.ReadU8()
		if err != nil {
			return nil, errors.OutOfBounds(errors.PhaseParse, err)
		}

		switch kind {
		case objAsciiString, objUnicodeString:
			length, err := r.ReadU32()
			if err != nil {
				return nil, errors.OutOfBounds(errors.PhaseParse, err)
			}
			s, err := r.ReadString(int(length), kind == objUnicodeString)
			if err != nil {
				return nil, errors.OutOfBounds(errors.PhaseParse, err)
			}
			keys = append(keys, s)
		case objUInt16, objUInt32:
			v, err := r.ReadU32()
			if err != nil {
				return nil, errors.OutOfBounds(errors.PhaseParse, err)
			}
			keys = append(keys, strconv.FormatUint(uint64(v), 10))
		case objInt32:
			v, err := r.ReadI32()
			if err != nil {
				return nil, errors.OutOfBounds(errors.PhaseParse, err)
			}
			keys = append(keys, strconv.FormatInt(int64(v), 10))
		default:
			keys = append(keys, "key_"+strconv.Itoa(len(keys)))
		}
	}
	return keys, nil
}

func readEntries(data []byte) ([]entry, error) {
	r := buffer.NewReader(data)
	count, err := r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseParse, err)
	}
	entries := make([]entry, 0, count)
	for i := uint32(0); i < count; i++ {
		var e entry
		for _, field := range []*int32{
			&e.internalID, &e.providerID, &e.dependencyKey, &e.dependencyHash,
			&e.extraData, &e.primaryKey, &e.resourceType,
		} {
			if *field, err = r.ReadI32(); err != nil {
				return nil, errors.OutOfBounds(errors.PhaseParse, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// extraObject decodes the extra-data record at offset: a serialized JSON
// object carrying bundle metadata. Records of any other kind resolve to
// nil. A malformed embedded JSON payload resolves to an empty object rather
// than an error.
func extraObject(data []byte, offset int32) (map[string]any, error) {
	r := buffer.NewReader(data)
	if err := r.Seek(int(offset)); err != nil {
		return nil, errors.OutOfBounds(errors.PhaseParse, err)
	}
	kind, err := r.ReadU8()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseParse, err)
	}
	if kind != objJSONObject {
		return nil, nil
	}

	// Assembly and class names precede the payload; they only advance the
	// cursor here.
	for i := 0; i < 2; i++ {
		length, err := r.ReadU8()
		if err != nil {
			return nil, errors.OutOfBounds(errors.PhaseParse, err)
		}
		if _, err := r.Read(int(length)); err != nil {
			return nil, errors.OutOfBounds(errors.PhaseParse, err)
		}
	}

	length, err := r.ReadI32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseParse, err)
	}
	if length < 0 {
		return nil, errors.InvalidData(errors.PhaseParse, []string{"extras"},
			"negative payload length")
	}
	payload, err := r.ReadString(int(length), true)
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseParse, err)
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return map[string]any{}, nil
	}
	return obj, nil
}
