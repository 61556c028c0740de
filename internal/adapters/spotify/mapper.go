package spotify

import (
	"strings"

	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
)

const (
	unknownArtist = "Unknown artist"
	unknownAlbum  = "Unknown album"
)

// mapTopArtistNames keeps non-blank names in ranking order.
func mapTopArtistNames(page topArtistsPage) []string {
	names := make([]string, 0, len(page.Items))
	for _, a := range page.Items {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// mapPlayHistoryArtists flattens every artist of every played track, first
// occurrence first.
func mapPlayHistoryArtists(page playHistoryPage) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Track == nil {
			continue
		}
		for _, a := range item.Track.Artists {
			if a.Name == "" {
				continue
			}
			if _, dup := seen[a.Name]; dup {
				continue
			}
			seen[a.Name] = struct{}{}
			names = append(names, a.Name)
		}
	}
	return names
}

// mapNowPlaying converts the most recent track. Tracks without a name yield
// nil.
func mapNowPlaying(st *spotifyTrack) *ports.NowPlaying {
	if st == nil || st.Name == "" {
		return nil
	}

	artistNames := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artistNames = append(artistNames, a.Name)
	}

	coverURL := ""
	if len(st.Album.Images) > 0 {
		coverURL = st.Album.Images[0].URL
	}

	return &ports.NowPlaying{
		TrackName:     st.Name,
		ArtistName:    fallbackIfEmpty(strings.Join(artistNames, ", "), unknownArtist),
		AlbumName:     fallbackIfEmpty(st.Album.Name, unknownAlbum),
		AlbumImageURL: coverURL,
	}
}

func fallbackIfEmpty(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
