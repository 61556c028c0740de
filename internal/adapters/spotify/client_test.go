package spotify_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/tuniverse/internal/adapters/spotify"
	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
)

// newTestServer routes paths to canned bodies and checks the bearer token.
func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"status":401,"message":"Invalid access token"}}`))
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func newClient(ts *httptest.Server) *spotify.Client {
	return spotify.NewClient(ts.Client(), ts.URL, spotify.WithRetry(1, time.Millisecond))
}

const recentBody = `{
  "items": [
    {"track": {"name": "Dynamite", "artists": [{"name": "BTS"}], "album": {"name": "BE", "images": [{"url": "https://img/1"}]}}},
    {"track": {"name": "Collab", "artists": [{"name": "Drake"}, {"name": "BTS"}], "album": {"name": ""}}},
    {"track": null},
    {"track": {"name": "Shake It Off", "artists": [{"name": "Taylor Swift"}], "album": {"name": "1989"}}}
  ]
}`

func TestTopArtists(t *testing.T) {
	queries := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.RawQuery
		_, _ = w.Write([]byte(`{"items": [{"id": "1", "name": "Taylor Swift"}, {"id": "2", "name": "  "}, {"id": "3", "name": "BTS"}]}`))
	}))
	defer ts.Close()

	names, err := spotify.NewClient(ts.Client(), ts.URL).TopArtists(context.Background(), "tok", 80)
	require.NoError(t, err)
	assert.Equal(t, []string{"Taylor Swift", "BTS"}, names)
	gotQuery := <-queries
	assert.Contains(t, gotQuery, "limit=50")
	assert.Contains(t, gotQuery, "time_range=medium_term")
}

func TestRecentlyPlayedArtists(t *testing.T) {
	ts := newTestServer(t, map[string]string{"/me/player/recently-played": recentBody})
	defer ts.Close()

	names, err := newClient(ts).RecentlyPlayedArtists(context.Background(), "good-token", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTS", "Drake", "Taylor Swift"}, names)
}

func TestNowPlaying(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *ports.NowPlaying
	}{
		{
			name: "most recent track",
			body: recentBody,
			want: &ports.NowPlaying{TrackName: "Dynamite", ArtistName: "BTS", AlbumName: "BE", AlbumImageURL: "https://img/1"},
		},
		{
			name: "placeholders for missing album and artists",
			body: `{"items": [{"track": {"name": "Untitled", "artists": [], "album": {}}}]}`,
			want: &ports.NowPlaying{TrackName: "Untitled", ArtistName: "Unknown artist", AlbumName: "Unknown album"},
		},
		{
			name: "empty history",
			body: `{"items": []}`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, map[string]string{"/me/player/recently-played": tt.body})
			defer ts.Close()

			got, err := newClient(ts).NowPlaying(context.Background(), "good-token")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProfile(t *testing.T) {
	ts := newTestServer(t, map[string]string{"/me": `{"id": "u-42", "display_name": "Max", "country": "DE"}`})
	defer ts.Close()

	p, err := newClient(ts).Profile(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, ports.Profile{ID: "u-42", DisplayName: "Max"}, p)
}

func TestUpstreamErrors(t *testing.T) {
	ts := newTestServer(t, map[string]string{"/me": `{not json`})
	defer ts.Close()
	client := newClient(ts)

	tests := []struct {
		name       string
		token      string
		call       func(string) error
		wantStatus int
	}{
		{
			name:  "bad token",
			token: "expired",
			call: func(tok string) error {
				_, err := client.TopArtists(context.Background(), tok, 8)
				return err
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:  "missing token",
			token: " ",
			call: func(tok string) error {
				_, err := client.Profile(context.Background(), tok)
				return err
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:  "undecodable body",
			token: "good-token",
			call: func(tok string) error {
				_, err := client.Profile(context.Background(), tok)
				return err
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(tt.token)
			require.ErrorIs(t, err, ports.ErrUpstream)

			var upstream ports.UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, tt.wantStatus, upstream.Status)
		})
	}
}

func TestOAuth(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "cid" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "abc" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	o := spotify.NewOAuth("cid", "secret", "http://localhost/cb", "https://accounts.test/authorize", tokenSrv.URL)
	require.True(t, o.Configured())

	u, err := o.AuthCodeURL("http://front")
	require.NoError(t, err)
	assert.Contains(t, u, "https://accounts.test/authorize?")
	assert.Contains(t, u, "client_id=cid")
	assert.Contains(t, u, "user-top-read")
	assert.Contains(t, u, "show_dialog=true")

	tok, err := o.Exchange(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, "rt", tok.RefreshToken)

	_, err = o.Exchange(context.Background(), "wrong")
	assert.Error(t, err)

	unconfigured := spotify.NewOAuth("", "", "", "", "")
	_, err = unconfigured.AuthCodeURL("x")
	assert.ErrorIs(t, err, spotify.ErrOAuthNotConfigured)
}
