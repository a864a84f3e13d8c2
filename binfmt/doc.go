// Package binfmt parses the binary encoding of Addressables content
// catalogs.
//
// The binary layout is a pointer-chasing format: a fixed header holds
// absolute file offsets into shared string, array and record pools, and
// records reference each other by offset. Strings may be stored as single
// length-prefixed runs or as chains of offset-linked fragments joined with a
// caller-supplied separator. Leaf values are type-erased on disk and are
// resolved at read time by matching a serialized type name.
//
// Parsing is single-threaded; per-call caches keyed by raw offset guarantee
// each pool entry is decoded at most once and terminate cyclic dependency
// references.
//
// Parse a catalog:
//
//	cat, err := binfmt.Parse(data)
//
// A malformed location record does not abort the decode: the record is
// skipped, logged through this package's zap logger, and the remaining
// locations are parsed (partial catalogs are an intentional outcome).
// Header-level failures (bad magic, unsupported schema version) are fatal.
package binfmt
