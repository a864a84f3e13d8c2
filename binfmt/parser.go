package binfmt

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/addrkit/catalog-reader/catalog"
	"github.com/addrkit/catalog-reader/errors"
	"github.com/addrkit/catalog-reader/internal/buffer"
)

// parser holds the cursor and the decode-scoped caches. Each Parse call
// builds its own parser; nothing here is shared across calls.
type parser struct {
	r       *buffer.Reader
	version uint32

	stringCache map[uint32]string
	arrayCache  map[uint32][]uint32
	// visited maps a location record offset to the primary key it produced.
	// An offset is recorded before its dependency list is resolved, which
	// terminates self-referential and mutually-cyclic dependency chains.
	visited map[uint32]string
}

// header is the versioned catalog header, produced in one place by
// readHeader. buildResultHash is the sentinel for the short version-1
// layout, which has no such field.
type header struct {
	version          uint32
	keysOffset       uint32
	idOffset         uint32
	instanceProvider uint32
	sceneProvider    uint32
	initObjects      uint32
	buildResultHash  uint32
}

func newParser(data []byte) *parser {
	return &parser{
		r:           buffer.NewReader(data),
		stringCache: make(map[uint32]string),
		arrayCache:  make(map[uint32][]uint32),
		visited:     make(map[uint32]string),
	}
}

// Parse decodes a binary catalog into the canonical model. Individual
// malformed location records are skipped and logged; header and provider
// failures abort the decode.
func Parse(data []byte) (*catalog.Catalog, error) {
	p := newParser(data)

	hdr, err := p.readHeader()
	if err != nil {
		return nil, err
	}
	p.version = hdr.version

	cat := &catalog.Catalog{
		SchemaVersion: int(hdr.version),
		Locations:     make(map[string]*catalog.Location),
	}

	cat.LocatorID, err = p.encodedString(hdr.idOffset, nullSeparator)
	if err != nil {
		return nil, err
	}
	cat.BuildResultHash, err = p.encodedString(hdr.buildResultHash, nullSeparator)
	if err != nil {
		return nil, err
	}

	instance, err := p.providerData(hdr.instanceProvider)
	if err != nil {
		return nil, err
	}
	cat.InstanceProvider = instance
	scene, err := p.providerData(hdr.sceneProvider)
	if err != nil {
		return nil, err
	}
	cat.SceneProvider = scene

	providerOffsets, err := p.offsetArray(hdr.initObjects)
	if err != nil {
		return nil, err
	}
	for _, off := range providerOffsets {
		provider, err := p.providerData(off)
		if err != nil {
			return nil, err
		}
		cat.ResourceProviders = append(cat.ResourceProviders, *provider)
	}

	if err := p.parseLocations(hdr.keysOffset, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// readHeader validates the magic and schema version and reads the offset
// table. Version 1 catalogs whose keys offset equals the short header size
// predate the build-result-hash field; their layout has five offsets, not
// six.
func (p *parser) readHeader() (header, error) {
	magic, err := p.r.ReadU32()
	if err != nil {
		return header{}, errors.OutOfBounds(errors.PhaseHeader, err)
	}
	if magic != Magic && magic != MagicReversed {
		return header{}, errors.InvalidData(errors.PhaseHeader, nil,
			fmt.Sprintf("bad magic 0x%08x", magic))
	}

	version, err := p.r.ReadU32()
	if err != nil {
		return header{}, errors.OutOfBounds(errors.PhaseHeader, err)
	}
	if version != 1 && version != 2 {
		return header{}, errors.UnsupportedVersion(version)
	}

	hdr := header{version: version}
	for _, field := range []*uint32{
		&hdr.keysOffset, &hdr.idOffset, &hdr.instanceProvider,
		&hdr.sceneProvider, &hdr.initObjects,
	} {
		if *field, err = p.r.ReadU32(); err != nil {
			return header{}, errors.OutOfBounds(errors.PhaseHeader, err)
		}
	}

	if version == 1 && hdr.keysOffset == shortHeaderSize {
		hdr.buildResultHash = Sentinel
	} else {
		if hdr.buildResultHash, err = p.r.ReadU32(); err != nil {
			return header{}, errors.OutOfBounds(errors.PhaseHeader, err)
		}
	}
	return hdr, nil
}

// providerData reads an ObjectInitializationData record. The sentinel
// resolves to an empty record, not nil, matching the source format.
func (p *parser) providerData(offset uint32) (*catalog.ProviderData, error) {
	if offset == Sentinel {
		return &catalog.ProviderData{}, nil
	}
	if err := p.r.Seek(int(offset)); err != nil {
		return nil, errors.OutOfBounds(errors.PhaseHeader, err)
	}
	idOffset, err := p.r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseHeader, err)
	}
	typeOffset, err := p.r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseHeader, err)
	}
	dataOffset, err := p.r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseHeader, err)
	}

	id, err := p.encodedString(idOffset, nullSeparator)
	if err != nil {
		return nil, err
	}
	st, err := p.serializedType(typeOffset)
	if err != nil {
		return nil, err
	}
	data, err := p.encodedString(dataOffset, nullSeparator)
	if err != nil {
		return nil, err
	}
	return &catalog.ProviderData{ID: id, Type: st, Data: data}, nil
}

// parseLocations walks the top-level offset table of (key, location-list)
// pairs and decodes every referenced location record. A failing group or
// record is skipped so one malformed entry cannot sink the catalog.
func (p *parser) parseLocations(keysOffset uint32, cat *catalog.Catalog) error {
	pairs, err := p.offsetArray(keysOffset)
	if err != nil {
		return err
	}

	log := Logger()
	for i := 0; i+1 < len(pairs); i += 2 {
		listOffset := pairs[i+1]
		locationOffsets, err := p.offsetArray(listOffset)
		if err != nil {
			log.Warn("skipping unreadable location group",
				zap.Int("group", i/2),
				zap.Uint32("offset", listOffset),
				zap.Error(err))
			continue
		}
		for _, off := range locationOffsets {
			if _, err := p.location(off, cat); err != nil {
				log.Warn("skipping undecodable location",
					zap.Uint32("offset", off),
					zap.Error(err))
			}
		}
	}
	return nil
}

// location decodes one location record and inserts it into the catalog,
// resolving its dependency offsets into direct references. The record's key
// is cached and the location inserted before dependencies are followed, so a
// dependency list that references an offset currently mid-decode resolves to
// the already-cached entry instead of recursing forever.
func (p *parser) location(offset uint32, cat *catalog.Catalog) (*catalog.Location, error) {
	if key, ok := p.visited[offset]; ok {
		return cat.Locations[key], nil
	}

	if err := p.r.Seek(int(offset)); err != nil {
		return nil, errors.OutOfBounds(errors.PhaseLocation, err)
	}
	var keyOffset, internalIDOffset, providerIDOffset, depsOffset uint32
	for _, field := range []*uint32{&keyOffset, &internalIDOffset, &providerIDOffset, &depsOffset} {
		var err error
		if *field, err = p.r.ReadU32(); err != nil {
			return nil, errors.OutOfBounds(errors.PhaseLocation, err)
		}
	}
	depHash, err := p.r.ReadI32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseLocation, err)
	}
	dataOffset, err := p.r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseLocation, err)
	}
	typeOffset, err := p.r.ReadU32()
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseLocation, err)
	}

	key, err := p.encodedString(keyOffset, keySeparator)
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = fmt.Sprintf("res_%d", offset)
	}
	internalID, err := p.encodedString(internalIDOffset, keySeparator)
	if err != nil {
		return nil, err
	}
	providerID, err := p.encodedString(providerIDOffset, providerSeparator)
	if err != nil {
		return nil, err
	}
	resourceType, err := p.serializedType(typeOffset)
	if err != nil {
		return nil, err
	}
	value, err := p.decodeValue(dataOffset)
	if err != nil {
		return nil, err
	}

	loc := &catalog.Location{
		Key:            key,
		InternalID:     internalID,
		ProviderID:     providerID,
		DependencyHash: depHash,
		ResourceType:   resourceType,
	}
	if value.Kind == ValueBundleOptions {
		loc.BundleName = value.Bundle.BundleName
		loc.BundleSize = value.Bundle.BundleSize
		loc.CRC = value.Bundle.CRC
		loc.Hash = value.Bundle.Hash
		loc.RequestOptions = value.Bundle.Options
		loc.Raw = value.Bundle
	}

	// Insert before resolving dependencies: the cycle breaker.
	p.visited[offset] = key
	cat.Locations[key] = loc

	if depsOffset != Sentinel {
		p.resolveDependencies(offset, depsOffset, loc, cat)
	}
	return loc, nil
}

// resolveDependencies materializes a location's dependency offsets into
// direct references. Failures here degrade the single location rather than
// failing it: the source format tolerates broken dependency arrays.
func (p *parser) resolveDependencies(offset, depsOffset uint32, loc *catalog.Location, cat *catalog.Catalog) {
	log := Logger()
	depOffsets, err := p.offsetArray(depsOffset)
	if err != nil {
		log.Warn("dropping unreadable dependency array",
			zap.String("key", loc.Key),
			zap.Uint32("offset", depsOffset),
			zap.Error(err))
		return
	}

	var deps []*catalog.Location
	for _, depOffset := range depOffsets {
		if depOffset == offset {
			log.Warn("location depends on itself", zap.String("key", loc.Key))
		}
		dep, err := p.location(depOffset, cat)
		if err != nil {
			log.Warn("dropping undecodable dependency",
				zap.String("key", loc.Key),
				zap.Uint32("offset", depOffset),
				zap.Error(err))
			continue
		}
		if dep != nil {
			deps = append(deps, dep)
		}
	}
	if len(deps) > 0 {
		loc.Dependencies = deps
	}
	if len(depOffsets) == 1 {
		if key, ok := p.visited[depOffsets[0]]; ok {
			loc.DependencyKey = key
		}
	}
}
