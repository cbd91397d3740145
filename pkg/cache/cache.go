// Package cache stores analysis reports and rendered artifacts.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: disables caching
//
// Keys are produced by a [Keyer] from the SHA-256 of the input plus every
// option that changes the result, so a hit is always safe to reuse.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached entries.
const (
	// TTLReport is how long an analysis report stays cached. Reports are a
	// pure function of input and options, so this only bounds disk usage.
	TTLReport = 7 * 24 * time.Hour

	// TTLArtifact is how long a rendered DOT or SVG document stays cached.
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// =============================================================================
// Keys
// =============================================================================

// ReportKeyOpts are the options that change an analysis report.
type ReportKeyOpts struct {
	Prefix     string `json:"prefix"`
	All        bool   `json:"all"`
	Strategy   string `json:"strategy"`
	NameLength int    `json:"name_length"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Strategy  string  `json:"strategy"`
	Engine    string  `json:"engine,omitempty"`
	Highlight bool    `json:"highlight"`
	Detailed  bool    `json:"detailed,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ReportKey returns the key for the report of the input with the given
	// content hash.
	ReportKey(inputHash string, opts ReportKeyOpts) string

	// ArtifactKey returns the key for a rendered artifact of the input.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "kind:sha256(parts)".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ReportKey implements Keyer.
func (DefaultKeyer) ReportKey(inputHash string, opts ReportKeyOpts) string {
	return hashKey("report", inputHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}
