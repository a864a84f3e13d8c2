// Package jsonfmt parses the JSON encoding of Addressables content
// catalogs.
//
// The JSON document is self-describing at the top level (locator ID,
// provider records, lookup tables) but embeds four base64 binary sub-blobs
// (keys, entries, extras, buckets) that use the same little-endian cursor
// primitives as the binary format. Entry records are fixed-width tuples of
// indices into the parallel lookup tables; bucket records group each key
// with the entry indices it addresses and drive both key decoding and
// dependency resolution.
//
// Parse a catalog from raw JSON bytes:
//
//	cat, err := jsonfmt.Parse(data)
//
// or from an already-decoded generic tree:
//
//	cat, err := jsonfmt.ParseTree(tree)
package jsonfmt
