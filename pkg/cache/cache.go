// Package cache stores computed plans so repeated runs over the same deposit
// field and settings skip the calculator.
//
// Four backends implement [Cache]:
//
//   - [NullCache]: caching disabled.
//   - [FileCache]: zstd-compressed entries under a local directory (CLI).
//   - [RedisCache]: shared cache for API deployments.
//   - [MongoCache]: shared cache with server-side expiry.
//
// [Open] picks a backend from a location string. Keys come from a [Keyer]
// so that callers can namespace them (see [ScopedKeyer]).
package cache

import (
	"context"
	"time"
)

// TTLs for cached values.
const (
	// TTLPlan is how long a computed plan stays valid. Plans are pure
	// functions of their key, so this only bounds storage growth.
	TTLPlan = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// A missing or expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// PlanKeyOpts lists every setting the calculator output depends on.
type PlanKeyOpts struct {
	Unit         string   `json:"unit"`
	Bounds       [4]int   `json:"bounds"`
	Density      string   `json:"density"`
	Flow         string   `json:"flow"`
	Deposits     []string `json:"deposits,omitempty"`
	AvoidForeign bool     `json:"avoid_foreign,omitempty"`
	BoosterWidth int      `json:"booster_width,omitempty"`
	RelayWidth   int      `json:"relay_width,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// PlanKey returns the key of a plan computed from the deposit field
	// with hash fieldHash.
	PlanKey(fieldHash string, opts PlanKeyOpts) string
}

// DefaultKeyer produces unprefixed keys of the form "plan:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PlanKey implements Keyer.
func (DefaultKeyer) PlanKey(fieldHash string, opts PlanKeyOpts) string {
	return hashKey("plan", fieldHash, opts)
}
