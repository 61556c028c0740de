package spotify

// spotifyArtist is the simplified artist object embedded in tracks and
// returned by the top-artists endpoint.
type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyImage struct {
	URL string `json:"url"`
}

type spotifyAlbum struct {
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
}

type spotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []spotifyArtist `json:"artists"`
	Album   spotifyAlbum    `json:"album"`
}

// topArtistsPage is the /me/top/artists response.
type topArtistsPage struct {
	Items []spotifyArtist `json:"items"`
}

// playHistoryPage is the /me/player/recently-played response.
type playHistoryPage struct {
	Items []struct {
		Track    *spotifyTrack `json:"track"`
		PlayedAt string        `json:"played_at"`
	} `json:"items"`
}

type spotifyProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
