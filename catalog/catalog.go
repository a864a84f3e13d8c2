// Package catalog defines the canonical model produced by both catalog
// parsers: the key-to-location map, provider records, and the serialized
// type and request-option metadata attached to individual locations.
package catalog

import "strings"

// AssetLoadMode controls which assets a bundle load request materializes.
type AssetLoadMode uint8

const (
	// RequestedAssetAndDependencies loads only the requested asset and its
	// dependency closure.
	RequestedAssetAndDependencies AssetLoadMode = 0
	// AllPackedAssetsAndDependencies eagerly loads every asset packed into
	// the bundle.
	AllPackedAssetsAndDependencies AssetLoadMode = 1
)

// SerializedType names a managed type by assembly and class. The format is
// open-ended, so types are carried as strings and matched by name at decode
// time rather than mapped onto an enum.
type SerializedType struct {
	AssemblyName string
	ClassName    string
}

// ShortAssemblyName returns the assembly name up to the first comma.
func (t SerializedType) ShortAssemblyName() string {
	name, _, _ := strings.Cut(t.AssemblyName, ",")
	return name
}

// MatchName returns the "shortAssembly; class" form used for decode-time
// type dispatch.
func (t SerializedType) MatchName() string {
	return t.ShortAssemblyName() + "; " + t.ClassName
}

// ProviderData is the opaque per-provider configuration record
// (ObjectInitializationData in the source format).
type ProviderData struct {
	ID   string
	Type *SerializedType
	Data string
}

// BundleRequestOptions carries the download and caching parameters attached
// to bundle locations. SchemaVersion records which revision of the record
// was present on disk; it is metadata only and drives no further decoding.
type BundleRequestOptions struct {
	Timeout                            int16
	RedirectLimit                      uint8
	RetryCount                         uint8
	AssetLoadMode                      AssetLoadMode
	ChunkedTransfer                    bool
	UseCrcForCachedBundle              bool
	UseWebRequestForLocalBundles       bool
	ClearOtherCachedVersionsWhenLoaded bool
	SchemaVersion                      int
}

// Location describes one addressable entry: where the asset or bundle lives
// and how to load it. Dependencies hold shared references into the same
// catalog, not owned copies. Locations are immutable once inserted into the
// catalog map.
type Location struct {
	Key            string
	InternalID     string
	ProviderID     string
	DependencyHash int32
	DependencyKey  string
	Dependencies   []*Location
	BundleName     string
	BundleSize     uint32
	CRC            string
	Hash           string
	ResourceType   *SerializedType
	Raw            any
	RequestOptions *BundleRequestOptions
}

// Catalog is the decoded top-level structure. Locations is keyed by each
// location's primary key; keys are unique, with later insertions in source
// order overwriting earlier ones.
type Catalog struct {
	SchemaVersion     int
	LocatorID         string
	BuildResultHash   string
	InstanceProvider  *ProviderData
	SceneProvider     *ProviderData
	ResourceProviders []ProviderData
	Locations         map[string]*Location
}
