package ports

import (
	"context"
	"errors"
)

// ErrOriginNotFound indicates the registry had no usable origin for an artist.
var ErrOriginNotFound = errors.New("origin not found")

// ErrLookupSkipped indicates the lookup was never sent, for example because
// the client was throttled or its circuit breaker was open. It says nothing
// about the artist and must not be remembered as a miss.
var ErrLookupSkipped = errors.New("origin lookup skipped")

// OriginLookup queries an external artist-metadata registry for the raw
// geographic label of an artist (a country code or a place name).
type OriginLookup interface {
	LookupOrigin(ctx context.Context, artist string) (string, error)
}
