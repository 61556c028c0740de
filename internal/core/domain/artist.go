package domain

import "strings"

// UserArtist is an artist recorded for a user together with the raw origin
// label resolved for it. Origin is empty until a worker resolves it.
type UserArtist struct {
	UserID string
	Name   string
	Origin string
}

// DedupeArtistNames trims names, drops empties and duplicates (first seen
// wins) and, when limit > 0, keeps at most limit names. Matching is
// case-sensitive.
func DedupeArtistNames(names []string, limit int) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
