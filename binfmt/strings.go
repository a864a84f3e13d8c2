package binfmt

import (
	"strings"

	"github.com/addrkit/catalog-reader/errors"
)

// encodedString resolves an offset-encoded string. The sentinel resolves to
// the empty string. The top two bits of the offset select UTF-16 encoding
// and the chained representation; the chained flag is only honored when the
// caller supplies a real separator. Results are memoized by the raw offset,
// flags included, so a chain reachable from several records is decoded once.
func (p *parser) encodedString(offset uint32, sep string) (string, error) {
	if offset == Sentinel {
		return "", nil
	}
	if s, ok := p.stringCache[offset]; ok {
		return s, nil
	}

	unicode := offset&flagUnicode != 0
	chained := offset&flagChained != 0 && sep != nullSeparator
	real := offset & offsetMask

	var s string
	var err error
	if chained {
		s, err = p.chainedString(real, sep)
	} else {
		s, err = p.basicString(real, unicode)
	}
	if err != nil {
		return "", err
	}

	p.stringCache[offset] = s
	return s, nil
}

// basicString reads a length-prefixed string whose 32-bit byte length sits
// immediately before the offset.
func (p *parser) basicString(offset uint32, unicode bool) (string, error) {
	if err := p.r.Seek(int(offset) - 4); err != nil {
		return "", errors.OutOfBounds(errors.PhaseResolve, err)
	}
	length, err := p.r.ReadI32()
	if err != nil {
		return "", errors.OutOfBounds(errors.PhaseResolve, err)
	}
	if length < 0 {
		return "", errors.New(errors.PhaseResolve, errors.KindCorruptLength).
			Offset(offset).
			Detail("negative string length %d", length).
			Build()
	}
	s, err := p.r.ReadString(int(length), unicode)
	if err != nil {
		return "", errors.OutOfBounds(errors.PhaseResolve, err)
	}
	return s, nil
}

// chainedString reads a string split across offset-linked fragments. Each
// link is a (partOffset, nextOffset) pair; the chain ends at the sentinel.
// Fragments appear in file order for schema version 1 and in reverse file
// order from version 2 on. A chain whose next links revisit an offset is
// corrupt and fails rather than looping.
func (p *parser) chainedString(offset uint32, sep string) (string, error) {
	var parts []string
	seen := make(map[uint32]struct{})
	pos := offset
	for {
		if _, ok := seen[pos]; ok {
			return "", errors.New(errors.PhaseResolve, errors.KindInvalidData).
				Offset(pos).
				Detail("fragment chain links back to a visited offset").
				Build()
		}
		seen[pos] = struct{}{}
		if err := p.r.Seek(int(pos)); err != nil {
			return "", errors.OutOfBounds(errors.PhaseResolve, err)
		}
		partOffset, err := p.r.ReadU32()
		if err != nil {
			return "", errors.OutOfBounds(errors.PhaseResolve, err)
		}
		next, err := p.r.ReadU32()
		if err != nil {
			return "", errors.OutOfBounds(errors.PhaseResolve, err)
		}
		part, err := p.encodedString(partOffset, nullSeparator)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
		if next == Sentinel {
			break
		}
		pos = next
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	if p.version >= 2 {
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
		}
	}
	return strings.Join(parts, sep), nil
}

// offsetArray reads a length-prefixed array of 32-bit offsets. The byte
// length sits immediately before the offset and must be a multiple of four.
// The sentinel resolves to an empty array; results are memoized by offset.
func (p *parser) offsetArray(offset uint32) ([]uint32, error) {
	if offset == Sentinel {
		return nil, nil
	}
	if a, ok := p.arrayCache[offset]; ok {
		return a, nil
	}

	if err := p.r.Seek(int(offset) - 4); err != nil {
		return nil, errors.OutOfBounds(errors.PhaseResolve, err)
	}
	byteSize, err := p.r.ReadI32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseResolve, err)
	}
	if byteSize < 0 || byteSize%4 != 0 {
		return nil, errors.CorruptLength(offset, byteSize)
	}

	result := make([]uint32, byteSize/4)
	for i := range result {
		result[i], err = p.r.ReadU32()
		if err != nil {
			return nil, errors.OutOfBounds(errors.PhaseResolve, err)
		}
	}

	p.arrayCache[offset] = result
	return result, nil
}
