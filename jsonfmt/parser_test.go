package jsonfmt

import (
	goerrors "errors"
	"testing"

	"github.com/goccy/go-json"

	"github.com/addrkit/catalog-reader/catalog"
	"github.com/addrkit/catalog-reader/errors"
)

// catalogTree builds a two-location catalog tree: an asset that depends on
// the bundle carrying it.
func catalogTree() map[string]any {
	keys := newKeyTable(2)
	keys.ascii("Assets/Prefabs/hero.prefab")
	keys.ascii("levels_assets_all.bundle")

	buckets := []bucket{
		{offset: keys.offsets[0], entries: []int32{0}},
		{offset: keys.offsets[1], entries: []int32{1}},
	}

	var extras extraTable
	bundleExtra := extras.jsonRecord(map[string]any{
		"m_BundleName":      "levels_assets_all",
		"m_BundleSize":      1048576,
		"m_Crc":             195948557, // 0x0badf00d
		"m_Hash":            "102f3e4d5c6b7a8998a7b6c5d4e3f201",
		"m_Timeout":         30,
		"m_RedirectLimit":   2,
		"m_RetryCount":      3,
		"m_ChunkedTransfer": true,
		"m_AssetLoadMode":   1,
	})

	entries := []entry{
		{internalID: 0, providerID: 0, dependencyKey: 1, dependencyHash: 42,
			extraData: -1, primaryKey: 0, resourceType: 0},
		{internalID: 1, providerID: 1, dependencyKey: -1, dependencyHash: 0,
			extraData: bundleExtra, primaryKey: 1, resourceType: 1},
	}

	return map[string]any{
		"m_LocatorId":       "AddressablesMainContentCatalog",
		"m_BuildResultHash": "f2f77a3a9c2e8f6d",
		"m_InstanceProviderData": map[string]any{
			"m_Id": "UnityEngine.ResourceManagement.ResourceProviders.InstanceProvider",
			"m_ObjectType": map[string]any{
				"m_AssemblyName": "Unity.ResourceManager",
				"m_ClassName":    "UnityEngine.ResourceManagement.ResourceProviders.InstanceProvider",
			},
		},
		"m_ResourceProviderData": []any{
			map[string]any{
				"m_Id": "UnityEngine.ResourceManagement.ResourceProviders.BundledAssetProvider",
			},
		},
		"m_InternalIds":        []any{"0#/hero.prefab", "https://cdn.example.com/levels_assets_all.bundle"},
		"m_InternalIdPrefixes": []any{"Assets/Prefabs"},
		"m_ProviderIds": []any{
			"UnityEngine.ResourceManagement.ResourceProviders.BundledAssetProvider",
			"UnityEngine.ResourceManagement.ResourceProviders.AssetBundleProvider",
		},
		"m_resourceTypes": []any{
			map[string]any{
				"m_AssemblyName": "UnityEngine.CoreModule",
				"m_ClassName":    "UnityEngine.GameObject",
			},
			map[string]any{
				"m_AssemblyName": "Unity.ResourceManager",
				"m_ClassName":    "UnityEngine.ResourceManagement.ResourceProviders.IAssetBundleResource",
			},
		},
		"m_KeyDataString":    keys.base64(),
		"m_BucketDataString": bucketBlob(buckets),
		"m_EntryDataString":  entryBlob(entries),
		"m_ExtraDataString":  extras.base64(),
	}
}

func TestParseTreeCatalog(t *testing.T) {
	cat, err := ParseTree(catalogTree())
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}

	if cat.SchemaVersion != 1 {
		t.Errorf("SchemaVersion = %d, want 1", cat.SchemaVersion)
	}
	if cat.LocatorID != "AddressablesMainContentCatalog" {
		t.Errorf("LocatorID = %q", cat.LocatorID)
	}
	if cat.InstanceProvider == nil || cat.InstanceProvider.Type == nil ||
		cat.InstanceProvider.Type.AssemblyName != "Unity.ResourceManager" {
		t.Errorf("InstanceProvider = %+v", cat.InstanceProvider)
	}
	if len(cat.ResourceProviders) != 1 {
		t.Errorf("ResourceProviders = %d, want 1", len(cat.ResourceProviders))
	}

	if len(cat.Locations) != 2 {
		t.Fatalf("Locations = %d, want 2", len(cat.Locations))
	}
	asset := cat.Locations["Assets/Prefabs/hero.prefab"]
	if asset == nil {
		t.Fatal("asset location missing")
	}
	if asset.InternalID != "Assets/Prefabs/hero.prefab" {
		t.Errorf("InternalID = %q, prefix not expanded", asset.InternalID)
	}
	if asset.ProviderID != "UnityEngine.ResourceManagement.ResourceProviders.BundledAssetProvider" {
		t.Errorf("ProviderID = %q", asset.ProviderID)
	}
	if asset.DependencyHash != 42 {
		t.Errorf("DependencyHash = %d", asset.DependencyHash)
	}
	if asset.DependencyKey != "levels_assets_all.bundle" {
		t.Errorf("DependencyKey = %q", asset.DependencyKey)
	}
	if asset.ResourceType == nil || asset.ResourceType.ClassName != "UnityEngine.GameObject" {
		t.Errorf("ResourceType = %+v", asset.ResourceType)
	}
	if asset.RequestOptions != nil {
		t.Errorf("asset RequestOptions = %+v, want nil", asset.RequestOptions)
	}

	bundle := cat.Locations["levels_assets_all.bundle"]
	if bundle == nil {
		t.Fatal("bundle location missing")
	}
	if len(asset.Dependencies) != 1 || asset.Dependencies[0] != bundle {
		t.Errorf("asset deps = %v, want the bundle location", asset.Dependencies)
	}
	if bundle.InternalID != "https://cdn.example.com/levels_assets_all.bundle" {
		t.Errorf("bundle InternalID = %q", bundle.InternalID)
	}
	if bundle.BundleName != "levels_assets_all" {
		t.Errorf("BundleName = %q", bundle.BundleName)
	}
	if bundle.BundleSize != 1048576 {
		t.Errorf("BundleSize = %d", bundle.BundleSize)
	}
	if bundle.CRC != "0x0badf00d" {
		t.Errorf("CRC = %q", bundle.CRC)
	}
	if bundle.Hash != "102f3e4d5c6b7a8998a7b6c5d4e3f201" {
		t.Errorf("Hash = %q", bundle.Hash)
	}

	opts := bundle.RequestOptions
	if opts == nil {
		t.Fatal("bundle RequestOptions is nil")
	}
	if opts.Timeout != 30 || opts.RedirectLimit != 2 || opts.RetryCount != 3 {
		t.Errorf("options = %+v", opts)
	}
	if !opts.ChunkedTransfer {
		t.Error("ChunkedTransfer = false")
	}
	if opts.AssetLoadMode != catalog.AllPackedAssetsAndDependencies {
		t.Errorf("AssetLoadMode = %v", opts.AssetLoadMode)
	}
	if opts.SchemaVersion != 3 {
		t.Errorf("options SchemaVersion = %d, want 3", opts.SchemaVersion)
	}
}

func TestParseRoundTripsThroughJSON(t *testing.T) {
	raw, err := json.Marshal(catalogTree())
	if err != nil {
		t.Fatalf("marshal tree: %v", err)
	}

	fromText, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fromTree, err := ParseTree(catalogTree())
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	if len(fromText.Locations) != len(fromTree.Locations) {
		t.Fatalf("location counts differ: %d vs %d",
			len(fromText.Locations), len(fromTree.Locations))
	}
	for key, want := range fromTree.Locations {
		got := fromText.Locations[key]
		if got == nil {
			t.Errorf("key %q missing", key)
			continue
		}
		if got.InternalID != want.InternalID || got.BundleName != want.BundleName {
			t.Errorf("key %q: got %+v, want %+v", key, got, want)
		}
	}
}

func TestParseNotJSON(t *testing.T) {
	_, err := Parse([]byte("not a catalog"))
	if !goerrors.Is(err, &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidData}) {
		t.Errorf("got %v, want invalid_data", err)
	}
}

func TestParseTreeMissingBlob(t *testing.T) {
	tree := catalogTree()
	delete(tree, "m_EntryDataString")
	_, err := ParseTree(tree)
	if !goerrors.Is(err, &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindFieldMissing}) {
		t.Errorf("got %v, want field_missing", err)
	}
}

func TestReadKeysKinds(t *testing.T) {
	keys := newKeyTable(5)
	keys.ascii("plain")
	keys.unicode("unïcode")
	keys.uint32Key(4000000000)
	keys.int32Key(-7)
	keys.unknown(9)

	buckets := make([]bucket, 5)
	for i, off := range keys.offsets {
		buckets[i] = bucket{offset: off}
	}

	got, err := readKeys(keys.buf, buckets)
	if err != nil {
		t.Fatalf("readKeys: %v", err)
	}
	want := []string{"plain", "unïcode", "4000000000", "-7", "key_4"}
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLegacyKeysTakePrecedence(t *testing.T) {
	tree := catalogTree()
	tree["m_Keys"] = []any{"legacy-hero", "legacy-bundle"}

	cat, err := ParseTree(tree)
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	if cat.Locations["legacy-hero"] == nil {
		t.Errorf("want key from m_Keys, have %v", locationKeys(cat))
	}
	if cat.Locations["Assets/Prefabs/hero.prefab"] != nil {
		t.Error("blob key should have been shadowed by m_Keys")
	}
}

func TestDuplicateKeyLastWins(t *testing.T) {
	keys := newKeyTable(2)
	keys.ascii("dup")
	keys.ascii("dup")
	buckets := []bucket{
		{offset: keys.offsets[0], entries: []int32{0}},
		{offset: keys.offsets[1], entries: []int32{1}},
	}
	entries := []entry{
		{internalID: 0, dependencyKey: -1, extraData: -1, primaryKey: 0, resourceType: -1},
		{internalID: 1, dependencyKey: -1, extraData: -1, primaryKey: 1, resourceType: -1},
	}
	tree := map[string]any{
		"m_InternalIds":      []any{"first", "second"},
		"m_KeyDataString":    keys.base64(),
		"m_BucketDataString": bucketBlob(buckets),
		"m_EntryDataString":  entryBlob(entries),
		"m_ExtraDataString":  emptyExtraBlob(),
	}

	cat, err := ParseTree(tree)
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	if len(cat.Locations) != 1 {
		t.Fatalf("Locations = %d, want 1", len(cat.Locations))
	}
	if got := cat.Locations["dup"].InternalID; got != "second" {
		t.Errorf("InternalID = %q, want the later entry to win", got)
	}
}

func TestExpandInternalID(t *testing.T) {
	prefixes := []string{"Assets/Art", "https://cdn.example.com"}
	tests := []struct {
		id   string
		want string
	}{
		{"0#/tree.png", "Assets/Art/tree.png"},
		{"1#/cat.bundle", "https://cdn.example.com/cat.bundle"},
		{"no-marker", "no-marker"},
		{"9#/out-of-range", "9#/out-of-range"},
		{"x#/not-a-number", "x#/not-a-number"},
	}
	for _, tt := range tests {
		if got := expandInternalID(tt.id, prefixes); got != tt.want {
			t.Errorf("expandInternalID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
	if got := expandInternalID("0#/x", nil); got != "0#/x" {
		t.Errorf("no prefixes: got %q, want unchanged", got)
	}
}

func TestOptionsSchemaVersionInference(t *testing.T) {
	tests := []struct {
		name string
		obj  map[string]any
		want int
	}{
		{"base", map[string]any{"m_BundleName": "b"}, 1},
		{"chunked", map[string]any{"m_ChunkedTransfer": false}, 2},
		{"loadMode", map[string]any{"m_ChunkedTransfer": true, "m_AssetLoadMode": 0}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var loc catalog.Location
			applyExtraData(&loc, tt.obj)
			if loc.RequestOptions == nil {
				t.Fatal("RequestOptions is nil")
			}
			if loc.RequestOptions.SchemaVersion != tt.want {
				t.Errorf("SchemaVersion = %d, want %d", loc.RequestOptions.SchemaVersion, tt.want)
			}
		})
	}
}

func TestExtraObjectMalformedPayload(t *testing.T) {
	var extras extraTable
	off := extras.rawRecord("{not json")

	obj, err := extraObject(extras.buf, off)
	if err != nil {
		t.Fatalf("extraObject: %v", err)
	}
	if obj == nil || len(obj) != 0 {
		t.Errorf("got %v, want empty object", obj)
	}
}

func TestMalformedExtraDataLeavesLocationBare(t *testing.T) {
	keys := newKeyTable(1)
	keys.ascii("broken.bundle")
	buckets := []bucket{{offset: keys.offsets[0], entries: []int32{0}}}

	var extras extraTable
	off := extras.rawRecord("{not json")
	entries := []entry{
		{internalID: -1, providerID: -1, dependencyKey: -1,
			extraData: off, primaryKey: 0, resourceType: -1},
	}
	tree := map[string]any{
		"m_KeyDataString":    keys.base64(),
		"m_BucketDataString": bucketBlob(buckets),
		"m_EntryDataString":  entryBlob(entries),
		"m_ExtraDataString":  extras.base64(),
	}

	cat, err := ParseTree(tree)
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	loc := cat.Locations["broken.bundle"]
	if loc == nil {
		t.Fatal("location missing")
	}
	if loc.RequestOptions != nil {
		t.Errorf("RequestOptions = %+v, want nil", loc.RequestOptions)
	}
	if loc.CRC != "" {
		t.Errorf("CRC = %q, want empty", loc.CRC)
	}
	if loc.Raw != nil {
		t.Errorf("Raw = %v, want nil", loc.Raw)
	}
}

func TestExtraObjectSkipsNonJSONKinds(t *testing.T) {
	var b blob
	b.u8(objInt32)
	b.i32(5)

	obj, err := extraObject(b.buf, 0)
	if err != nil {
		t.Fatalf("extraObject: %v", err)
	}
	if obj != nil {
		t.Errorf("got %v, want nil", obj)
	}
}

func locationKeys(cat *catalog.Catalog) []string {
	keys := make([]string, 0, len(cat.Locations))
	for k := range cat.Locations {
		keys = append(keys, k)
	}
	return keys
}
