package binfmt

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/addrkit/catalog-reader/catalog"
	"github.com/addrkit/catalog-reader/errors"
)

// ValueKind discriminates the closed set of typed value variants the binary
// format can carry.
type ValueKind int

const (
	// ValueNone marks an absent value: a sentinel offset, an explicit
	// zero type descriptor, or the default-object form of a record type.
	ValueNone ValueKind = iota
	ValueInt32
	ValueInt64
	ValueBool
	ValueString
	ValueHash
	ValueBundleOptions
	// ValueUnrecognized marks a value whose serialized type name matched no
	// known variant. Unknown types are skipped, not errored, so catalogs
	// from newer toolchains still decode.
	ValueUnrecognized
)

// Value is a decoded type-erased leaf value.
type Value struct {
	Kind   ValueKind
	Int    int64  // Int32 and Int64 kinds
	Bool   bool   // Bool kind
	Str    string // String and Hash kinds
	Bundle *BundleValue
}

// BundleValue is the decoded AssetBundleRequestOptions record.
type BundleValue struct {
	BundleName string
	BundleSize uint32
	CRC        string
	Hash       string
	Options    *catalog.BundleRequestOptions
}

// serializedType reads an (assemblyName, className) string pair. The
// sentinel resolves to nil.
func (p *parser) serializedType(offset uint32) (*catalog.SerializedType, error) {
	if offset == Sentinel {
		return nil, nil
	}
	if err := p.r.Seek(int(offset)); err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}
	assemblyOffset, err := p.r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}
	classOffset, err := p.r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}

	assembly, err := p.encodedString(assemblyOffset, typeNameSeparator)
	if err != nil {
		return nil, err
	}
	class, err := p.encodedString(classOffset, typeNameSeparator)
	if err != nil {
		return nil, err
	}
	return &catalog.SerializedType{AssemblyName: assembly, ClassName: class}, nil
}

// hash128 reads a 128-bit hash and renders it as lowercase hex. Offset zero
// and the sentinel both mean "absent".
func (p *parser) hash128(offset uint32) (string, error) {
	if offset == 0 || offset == Sentinel {
		return "", nil
	}
	if err := p.r.Seek(int(offset)); err != nil {
		return "", errors.OutOfBounds(errors.PhaseValue, err)
	}
	b, err := p.r.Read(16)
	if err != nil {
		return "", errors.OutOfBounds(errors.PhaseValue, err)
	}
	return hex.EncodeToString(b), nil
}

// requestOptions reads the shared flag record of AssetBundleRequestOptions.
// Offset zero and the sentinel both mean "absent". The binary form always
// carries the full field set, so the schema version is fixed at 3.
func (p *parser) requestOptions(offset uint32) (*catalog.BundleRequestOptions, error) {
	if offset == 0 || offset == Sentinel {
		return nil, nil
	}
	if err := p.r.Seek(int(offset)); err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}
	timeout, err := p.r.ReadI16()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}
	redirectLimit, err := p.r.ReadU8()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}
	retryCount, err := p.r.ReadU8()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}
	flags, err := p.r.ReadI32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}

	return &catalog.BundleRequestOptions{
		Timeout:                            timeout,
		RedirectLimit:                      redirectLimit,
		RetryCount:                         retryCount,
		AssetLoadMode:                      catalog.AssetLoadMode(flags & 1),
		ChunkedTransfer:                    flags&2 != 0,
		UseCrcForCachedBundle:              flags&4 != 0,
		UseWebRequestForLocalBundles:       flags&8 != 0,
		ClearOtherCachedVersionsWhenLoaded: flags&16 != 0,
		SchemaVersion:                      3,
	}, nil
}

// bundleValue reads an AssetBundleRequestOptions value record: hash, bundle
// name, CRC, size, and the shared flag record.
func (p *parser) bundleValue(offset uint32) (*BundleValue, error) {
	if err := p.r.Seek(int(offset)); err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}
	hashOffset, err := p.r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}
	nameOffset, err := p.r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}
	crc, err := p.r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}
	size, err := p.r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}
	commonOffset, err := p.r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseValue, err)
	}

	hash, err := p.hash128(hashOffset)
	if err != nil {
		return nil, err
	}
	options, err := p.requestOptions(commonOffset)
	if err != nil {
		return nil, err
	}
	name, err := p.encodedString(nameOffset, bundleSeparator)
	if err != nil {
		return nil, err
	}

	return &BundleValue{
		BundleName: name,
		BundleSize: size,
		CRC:        fmt.Sprintf("0x%08x", crc),
		Hash:       hash,
		Options:    options,
	}, nil
}

// decodeValue resolves a type-erased value record: a (typeDescriptorOffset,
// valueOffset) pair dispatched on the serialized type's match name. A
// sentinel value offset is the "default object" shortcut and yields the
// variant's zero value without a further read.
func (p *parser) decodeValue(offset uint32) (Value, error) {
	if offset == Sentinel {
		return Value{}, nil
	}
	if err := p.r.Seek(int(offset)); err != nil {
		return Value{}, errors.OutOfBounds(errors.PhaseValue, err)
	}
	typeOffset, err := p.r.ReadU32()
	if err != nil {
		return Value{}, errors.OutOfBounds(errors.PhaseValue, err)
	}
	valueOffset, err := p.r.ReadU32()
	if err != nil {
		return Value{}, errors.OutOfBounds(errors.PhaseValue, err)
	}

	// Zero is an explicit "no type" marker, distinct from the sentinel.
	if typeOffset == 0 {
		return Value{}, nil
	}
	st, err := p.serializedType(typeOffset)
	if err != nil {
		return Value{}, err
	}
	if st == nil {
		return Value{}, nil
	}

	isDefault := valueOffset == Sentinel
	matchName := st.MatchName()

	switch {
	case strings.Contains(matchName, "System.Int32"):
		if isDefault {
			return Value{Kind: ValueInt32}, nil
		}
		if err := p.r.Seek(int(valueOffset)); err != nil {
			return Value{}, errors.OutOfBounds(errors.PhaseValue, err)
		}
		v, err := p.r.ReadI32()
		if err != nil {
			return Value{}, errors.OutOfBounds(errors.PhaseValue, err)
		}
		return Value{Kind: ValueInt32, Int: int64(v)}, nil

	case strings.Contains(matchName, "System.Int64"):
		if isDefault {
			return Value{Kind: ValueInt64}, nil
		}
		if err := p.r.Seek(int(valueOffset)); err != nil {
			return Value{}, errors.OutOfBounds(errors.PhaseValue, err)
		}
		v, err := p.r.ReadI64()
		if err != nil {
			return Value{}, errors.OutOfBounds(errors.PhaseValue, err)
		}
		return Value{Kind: ValueInt64, Int: v}, nil

	case strings.Contains(matchName, "System.Boolean"):
		if isDefault {
			return Value{Kind: ValueBool}, nil
		}
		if err := p.r.Seek(int(valueOffset)); err != nil {
			return Value{}, errors.OutOfBounds(errors.PhaseValue, err)
		}
		v, err := p.r.ReadBool()
		if err != nil {
			return Value{}, errors.OutOfBounds(errors.PhaseValue, err)
		}
		return Value{Kind: ValueBool, Bool: v}, nil

	case strings.Contains(matchName, "System.String"):
		if isDefault {
			return Value{Kind: ValueString}, nil
		}
		if err := p.r.Seek(int(valueOffset)); err != nil {
			return Value{}, errors.OutOfBounds(errors.PhaseValue, err)
		}
		stringOffset, err := p.r.ReadU32()
		if err != nil {
			return Value{}, errors.OutOfBounds(errors.PhaseValue, err)
		}
		// The value record carries its own chain separator: one UTF-16
		// code unit following the string offset.
		sep, err := p.r.ReadString(2, true)
		if err != nil {
			return Value{}, errors.OutOfBounds(errors.PhaseValue, err)
		}
		s, err := p.encodedString(stringOffset, sep)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueString, Str: s}, nil

	case strings.Contains(matchName, "UnityEngine.Hash128"):
		if isDefault {
			return Value{}, nil
		}
		h, err := p.hash128(valueOffset)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueHash, Str: h}, nil

	case strings.Contains(matchName, "AssetBundleRequestOptions"):
		if isDefault {
			return Value{}, nil
		}
		b, err := p.bundleValue(valueOffset)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueBundleOptions, Bundle: b}, nil

	default:
		return Value{Kind: ValueUnrecognized}, nil
	}
}
