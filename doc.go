// Package catalogreader decodes Unity Addressables content catalogs.
//
// A catalog maps addressable keys to resource locations (bundle and asset
// internal IDs, provider identifiers, and a dependency graph) and is stored
// on disk in one of two encodings: a self-describing JSON document, or a
// compact binary layout that addresses shared string, array and record pools
// by absolute byte offset.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	catalog-reader/      Root package with format sniffing and the Decode facade
//	├── catalog/         Canonical catalog model shared by both parsers
//	├── binfmt/          Binary catalog parser (offset-addressed pools)
//	├── jsonfmt/         JSON catalog parser (generic tree + base64 sub-blobs)
//	├── errors/          Structured error types for debugging
//	├── export/          Report export for decoded catalogs
//	└── internal/buffer/ Position-tracked little-endian cursor reader
//
// # Quick Start
//
// Decode a catalog of either encoding:
//
//	data, _ := os.ReadFile("catalog.bundle")
//	cat, err := catalogreader.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for key, loc := range cat.Locations {
//	    fmt.Println(key, loc.InternalID)
//	}
//
// Decoding is synchronous and single-threaded; all resolution caches are
// scoped to one Decode call. To decode several catalogs concurrently, issue
// independent Decode calls.
package catalogreader
