package network

import "errors"

// Sentinel errors for the network cache and index build. Callers use
// errors.Is to branch on them; SourceMissing and CacheCorrupt are fatal to
// the current run, while GeometryUnsupported is per-link and only skips
// that one link while the network rows are read.
var (
	// ErrSourceMissing is returned when the authoritative network source
	// is absent and no valid cache exists to fall back to.
	ErrSourceMissing = errors.New("network: authoritative source is missing")

	// ErrCacheCorrupt is returned when a cache file exists but cannot be
	// decoded. The caller should delete the cache file and retry, which
	// forces a rebuild from the authoritative source.
	ErrCacheCorrupt = errors.New("network: cache file is corrupt")

	// ErrGeometryUnsupported marks a link whose geometry column decoded
	// to neither a LineString nor a MultiLineString. The link is skipped
	// with a warning while NetworkCache reads the source or cache rows, so
	// it never reaches Build; it is not fatal.
	ErrGeometryUnsupported = errors.New("network: unsupported geometry type")
)
