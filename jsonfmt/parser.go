package jsonfmt

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/addrkit/catalog-reader/catalog"
	"github.com/addrkit/catalog-reader/errors"
)

// Parse unmarshals raw JSON catalog text into a generic tree and decodes
// it. Use ParseTree when the caller already holds a decoded tree.
func Parse(data []byte) (*catalog.Catalog, error) {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "not a JSON catalog")
	}
	return ParseTree(tree)
}

// ParseTree decodes a generic JSON catalog tree into the canonical model.
func ParseTree(tree map[string]any) (*catalog.Catalog, error) {
	cat := &catalog.Catalog{
		SchemaVersion:   1,
		LocatorID:       treeString(tree, "m_LocatorId"),
		BuildResultHash: treeString(tree, "m_BuildResultHash"),
		Locations:       make(map[string]*catalog.Location),
	}

	cat.InstanceProvider = providerFromTree(treeObject(tree, "m_InstanceProviderData"))
	cat.SceneProvider = providerFromTree(treeObject(tree, "m_SceneProviderData"))
	for _, v := range treeList(tree, "m_ResourceProviderData") {
		if obj, ok := v.(map[string]any); ok {
			cat.ResourceProviders = append(cat.ResourceProviders, *providerFromTree(obj))
		}
	}

	blobs, err := decodeBlobs(tree)
	if err != nil {
		return nil, err
	}

	buckets, err := readBuckets(blobs.buckets)
	if err != nil {
		return nil, err
	}
	keys, err := readKeys(blobs.keys, buckets)
	if err != nil {
		return nil, err
	}
	entries, err := readEntries(blobs.entries)
	if err != nil {
		return nil, err
	}

	tables := lookupTables{
		internalIDs: treeStrings(tree, "m_InternalIds"),
		idPrefixes:  treeStrings(tree, "m_InternalIdPrefixes"),
		providerIDs: treeStrings(tree, "m_ProviderIds"),
		legacyKeys:  treeStrings(tree, "m_Keys"),
		keys:        keys,
	}
	for _, v := range treeList(tree, "m_resourceTypes") {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		tables.resourceTypes = append(tables.resourceTypes, catalog.SerializedType{
			AssemblyName: treeString(obj, "m_AssemblyName"),
			ClassName:    treeString(obj, "m_ClassName"),
		})
	}

	locations := make([]*catalog.Location, len(entries))
	for i, e := range entries {
		loc, err := buildLocation(i, e, tables, blobs.extras)
		if err != nil {
			return nil, err
		}
		locations[i] = loc
	}

	resolveDependencies(locations, entries, buckets)

	// Bucket iteration order decides which location wins a duplicated key:
	// later insertions overwrite earlier ones.
	for i, b := range buckets {
		if i >= len(keys) {
			break
		}
		for _, entryIdx := range b.entries {
			if int(entryIdx) < len(locations) && entryIdx >= 0 {
				loc := locations[entryIdx]
				cat.Locations[loc.Key] = loc
			}
		}
	}
	return cat, nil
}

type catalogBlobs struct {
	keys    []byte
	entries []byte
	extras  []byte
	buckets []byte
}

type lookupTables struct {
	internalIDs   []string
	idPrefixes    []string
	providerIDs   []string
	legacyKeys    []string
	keys          []string
	resourceTypes []catalog.SerializedType
}

func decodeBlobs(tree map[string]any) (catalogBlobs, error) {
	var blobs catalogBlobs
	for _, f := range []struct {
		name string
		dst  *[]byte
	}{
		{"m_KeyDataString", &blobs.keys},
		{"m_EntryDataString", &blobs.entries},
		{"m_ExtraDataString", &blobs.extras},
		{"m_BucketDataString", &blobs.buckets},
	} {
		raw, ok := tree[f.name].(string)
		if !ok {
			return catalogBlobs{}, errors.FieldMissing(nil, f.name)
		}
		data, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return catalogBlobs{}, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, f.name)
		}
		*f.dst = data
	}
	return blobs, nil
}

func providerFromTree(obj map[string]any) *catalog.ProviderData {
	if obj == nil {
		return &catalog.ProviderData{}
	}
	p := &catalog.ProviderData{
		ID:   treeString(obj, "m_Id"),
		Data: treeString(obj, "m_Data"),
	}
	if typeObj := treeObject(obj, "m_ObjectType"); typeObj != nil {
		p.Type = &catalog.SerializedType{
			AssemblyName: treeString(typeObj, "m_AssemblyName"),
			ClassName:    treeString(typeObj, "m_ClassName"),
		}
	}
	return p
}

// buildLocation assembles one location from its entry record and the
// parallel lookup tables.
func buildLocation(index int, e entry, tables lookupTables, extras []byte) (*catalog.Location, error) {
	loc := &catalog.Location{DependencyHash: e.dependencyHash}

	if int(e.internalID) >= 0 && int(e.internalID) < len(tables.internalIDs) {
		loc.InternalID = expandInternalID(tables.internalIDs[e.internalID], tables.idPrefixes)
	}
	if int(e.providerID) >= 0 && int(e.providerID) < len(tables.providerIDs) {
		loc.ProviderID = tables.providerIDs[e.providerID]
	}

	// The legacy key table, when present, takes precedence over the
	// decoded key blob.
	primaryKeys := tables.keys
	if tables.legacyKeys != nil {
		primaryKeys = tables.legacyKeys
	}
	if int(e.primaryKey) >= 0 && int(e.primaryKey) < len(primaryKeys) {
		loc.Key = primaryKeys[e.primaryKey]
	} else {
		loc.Key = "key_" + strconv.Itoa(index)
	}

	if e.dependencyKey >= 0 && int(e.dependencyKey) < len(tables.keys) {
		loc.DependencyKey = tables.keys[e.dependencyKey]
	}
	if e.resourceType >= 0 && int(e.resourceType) < len(tables.resourceTypes) {
		rt := tables.resourceTypes[e.resourceType]
		loc.ResourceType = &rt
	}

	if e.extraData >= 0 {
		obj, err := extraObject(extras, e.extraData)
		if err != nil {
			return nil, err
		}
		// An empty object (malformed embedded payload) leaves the
		// location bare rather than attaching zero-valued options.
		if len(obj) > 0 {
			applyExtraData(loc, obj)
		}
	}
	return loc, nil
}

// expandInternalID substitutes a numeric prefix marker ("N#rest") with the
// prefix table entry it references.
func expandInternalID(id string, prefixes []string) string {
	if len(prefixes) == 0 {
		return id
	}
	marker, rest, found := strings.Cut(id, "#")
	if !found {
		return id
	}
	idx, err := strconv.Atoi(marker)
	if err != nil || idx < 0 || idx >= len(prefixes) {
		return id
	}
	return prefixes[idx] + rest
}

// applyExtraData copies bundle metadata from the nested extra-data object
// onto the location. The options schema version is inferred from which
// optional fields the object carries.
func applyExtraData(loc *catalog.Location, obj map[string]any) {
	loc.BundleName = treeString(obj, "m_BundleName")
	loc.BundleSize = uint32(treeNumber(obj, "m_BundleSize"))
	loc.CRC = fmt.Sprintf("0x%08x", uint32(treeNumber(obj, "m_Crc")))
	loc.Hash = treeString(obj, "m_Hash")
	loc.Raw = obj

	schemaVersion := 1
	if treeHas(obj, "m_ChunkedTransfer") {
		if treeHas(obj, "m_AssetLoadMode") {
			schemaVersion = 3
		} else {
			schemaVersion = 2
		}
	}
	loc.RequestOptions = &catalog.BundleRequestOptions{
		Timeout:                            int16(treeNumber(obj, "m_Timeout")),
		RedirectLimit:                      uint8(treeNumber(obj, "m_RedirectLimit")),
		RetryCount:                         uint8(treeNumber(obj, "m_RetryCount")),
		AssetLoadMode:                      catalog.AssetLoadMode(treeInt(obj, "m_AssetLoadMode")),
		ChunkedTransfer:                    treeBool(obj, "m_ChunkedTransfer"),
		UseCrcForCachedBundle:              treeBool(obj, "m_UseCrcForCachedBundles"),
		UseWebRequestForLocalBundles:       treeBool(obj, "m_UseUWRForLocalBundles"),
		ClearOtherCachedVersionsWhenLoaded: treeBool(obj, "m_ClearOtherCachedVersionsWhenLoaded"),
		SchemaVersion:                      schemaVersion,
	}
}

// resolveDependencies materializes each entry's dependency-key index into
// direct location references: the dependency key's bucket lists the entry
// indices the key addresses.
func resolveDependencies(locations []*catalog.Location, entries []entry, buckets []bucket) {
	for i, e := range entries {
		if e.dependencyKey < 0 || int(e.dependencyKey) >= len(buckets) {
			continue
		}
		var deps []*catalog.Location
		for _, entryIdx := range buckets[e.dependencyKey].entries {
			if entryIdx >= 0 && int(entryIdx) < len(locations) {
				deps = append(deps, locations[entryIdx])
			}
		}
		if len(deps) > 0 {
			locations[i].Dependencies = deps
		}
	}
}
