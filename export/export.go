// Package export renders a decoded catalog as the JSON asset report: catalog
// metadata, provider records, per-provider statistics, and the full asset
// list with summarized dependencies.
package export

import (
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/addrkit/catalog-reader/catalog"
)

// Report is the exported document shape.
type Report struct {
	CatalogInfo  CatalogInfo  `json:"catalog_info"`
	ProviderData ProviderData `json:"provider_data"`
	Statistics   Statistics   `json:"statistics"`
	Assets       []Asset      `json:"assets"`
}

type CatalogInfo struct {
	Version         int    `json:"version"`
	LocatorID       string `json:"locator_id"`
	BuildResultHash string `json:"build_result_hash"`
	TotalAssets     int    `json:"total_assets"`
	ExportTimestamp string `json:"export_timestamp"`
}

type ProviderData struct {
	InstanceProvider  *Provider  `json:"instance_provider"`
	SceneProvider     *Provider  `json:"scene_provider"`
	ResourceProviders []Provider `json:"resource_providers"`
}

type Provider struct {
	ID         string          `json:"id"`
	ObjectType *SerializedType `json:"object_type"`
	Data       string          `json:"data"`
}

type SerializedType struct {
	AssemblyName string `json:"assembly_name"`
	ClassName    string `json:"class_name"`
}

type Statistics struct {
	ProviderTypes map[string]int `json:"provider_types"`
}

type Asset struct {
	Key                string                `json:"key"`
	InternalID         string                `json:"internal_id"`
	ProviderID         string                `json:"provider_id"`
	PrimaryKey         string                `json:"primary_key"`
	DependencyHashCode int32                 `json:"dependency_hash_code"`
	DependencyKey      string                `json:"dependency_key,omitempty"`
	BundleName         string                `json:"bundle_name"`
	BundleSize         uint32                `json:"bundle_size"`
	CRC                string                `json:"crc"`
	Hash               string                `json:"hash"`
	ResourceType       *SerializedType       `json:"resource_type"`
	CommonInfo         *BundleRequestOptions `json:"common_info"`
	Dependencies       []AssetRef            `json:"dependencies,omitempty"`
}

type BundleRequestOptions struct {
	Timeout                            int16 `json:"timeout"`
	RedirectLimit                      uint8 `json:"redirect_limit"`
	RetryCount                         uint8 `json:"retry_count"`
	AssetLoadMode                      int   `json:"asset_load_mode"`
	ChunkedTransfer                    bool  `json:"chunked_transfer"`
	UseCrcForCachedBundle              bool  `json:"use_crc_for_cached_bundle"`
	UseWebRequestForLocalBundles       bool  `json:"use_unity_web_request_for_local_bundles"`
	ClearOtherCachedVersionsWhenLoaded bool  `json:"clear_other_cached_versions_when_loaded"`
	Version                            int   `json:"version"`
}

// AssetRef is the shallow dependency summary embedded in an asset entry.
type AssetRef struct {
	Key        string `json:"key"`
	InternalID string `json:"internal_id"`
	ProviderID string `json:"provider_id"`
	PrimaryKey string `json:"primary_key"`
}

// Build assembles the report for a decoded catalog. Assets are ordered by
// key so exports are deterministic.
func Build(cat *catalog.Catalog) *Report {
	report := &Report{
		CatalogInfo: CatalogInfo{
			Version:         cat.SchemaVersion,
			LocatorID:       cat.LocatorID,
			BuildResultHash: cat.BuildResultHash,
			TotalAssets:     len(cat.Locations),
			ExportTimestamp: time.Now().Format(time.RFC3339),
		},
		ProviderData: ProviderData{
			InstanceProvider: provider(cat.InstanceProvider),
			SceneProvider:    provider(cat.SceneProvider),
		},
		Statistics: Statistics{ProviderTypes: make(map[string]int)},
	}
	for i := range cat.ResourceProviders {
		report.ProviderData.ResourceProviders = append(report.ProviderData.ResourceProviders,
			*provider(&cat.ResourceProviders[i]))
	}

	keys := make([]string, 0, len(cat.Locations))
	for key := range cat.Locations {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		loc := cat.Locations[key]
		report.Statistics.ProviderTypes[providerType(loc.ProviderID)]++
		report.Assets = append(report.Assets, asset(loc))
	}
	return report
}

// Marshal renders the report for a catalog as indented JSON.
func Marshal(cat *catalog.Catalog) ([]byte, error) {
	return json.MarshalIndent(Build(cat), "", "  ")
}

func provider(p *catalog.ProviderData) *Provider {
	if p == nil {
		return nil
	}
	return &Provider{ID: p.ID, ObjectType: serializedType(p.Type), Data: p.Data}
}

func serializedType(t *catalog.SerializedType) *SerializedType {
	if t == nil {
		return nil
	}
	return &SerializedType{AssemblyName: t.AssemblyName, ClassName: t.ClassName}
}

// providerType shortens a provider ID to its last dotted segment.
func providerType(id string) string {
	if idx := strings.LastIndex(id, "."); idx >= 0 {
		return id[idx+1:]
	}
	return id
}

func asset(loc *catalog.Location) Asset {
	a := Asset{
		Key:                loc.Key,
		InternalID:         loc.InternalID,
		ProviderID:         loc.ProviderID,
		PrimaryKey:         loc.Key,
		DependencyHashCode: loc.DependencyHash,
		DependencyKey:      loc.DependencyKey,
		BundleName:         loc.BundleName,
		BundleSize:         loc.BundleSize,
		CRC:                loc.CRC,
		Hash:               loc.Hash,
		ResourceType:       serializedType(loc.ResourceType),
	}
	if o := loc.RequestOptions; o != nil {
		a.CommonInfo = &BundleRequestOptions{
			Timeout:                            o.Timeout,
			RedirectLimit:                      o.RedirectLimit,
			RetryCount:                         o.RetryCount,
			AssetLoadMode:                      int(o.AssetLoadMode),
			ChunkedTransfer:                    o.ChunkedTransfer,
			UseCrcForCachedBundle:              o.UseCrcForCachedBundle,
			UseWebRequestForLocalBundles:       o.UseWebRequestForLocalBundles,
			ClearOtherCachedVersionsWhenLoaded: o.ClearOtherCachedVersionsWhenLoaded,
			Version:                            o.SchemaVersion,
		}
	}
	for _, dep := range loc.Dependencies {
		a.Dependencies = append(a.Dependencies, AssetRef{
			Key:        dep.Key,
			InternalID: dep.InternalID,
			ProviderID: dep.ProviderID,
			PrimaryKey: dep.Key,
		})
	}
	return a
}
