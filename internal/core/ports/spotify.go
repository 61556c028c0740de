package ports

import (
	"context"
	"errors"
	"fmt"
)

// ErrUpstream indicates the streaming service could not provide data.
var ErrUpstream = errors.New("upstream unavailable")

// UpstreamError carries the failing operation and HTTP status (0 for
// transport failures).
type UpstreamError struct {
	Op     string
	Status int
	Detail string
}

func (e UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("could not fetch %s: %s", e.Op, e.Detail)
	}
	if e.Detail == "" {
		return fmt.Sprintf("could not fetch %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("could not fetch %s: status %d: %s", e.Op, e.Status, e.Detail)
}

func (e UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// Profile is the subset of the streaming profile the app uses.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// NowPlaying describes the most recently played track.
type NowPlaying struct {
	TrackName     string `json:"track_name"`
	ArtistName    string `json:"artist_name"`
	AlbumName     string `json:"album_name"`
	AlbumImageURL string `json:"album_image_url,omitempty"`
}

// ListeningHistory reads a user's listening data with a bearer access token.
type ListeningHistory interface {
	TopArtists(ctx context.Context, accessToken string, limit int) ([]string, error)
	RecentlyPlayedArtists(ctx context.Context, accessToken string, limit int) ([]string, error)
	Profile(ctx context.Context, accessToken string) (Profile, error)
	NowPlaying(ctx context.Context, accessToken string) (*NowPlaying, error)
}
