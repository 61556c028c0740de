package spotify

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// Scopes requested at login.
var Scopes = []string{
	"user-read-email",
	"playlist-read-private",
	"user-top-read",
	"user-read-recently-played",
	"user-read-currently-playing",
}

// ErrOAuthNotConfigured is returned when client credentials are missing.
var ErrOAuthNotConfigured = errors.New("spotify adapter: oauth not configured")

// OAuth runs the authorization-code flow against the Spotify accounts
// service.
type OAuth struct {
	cfg *oauth2.Config
}

// NewOAuth builds the flow. Empty authURL or tokenURL select Spotify's
// endpoints.
func NewOAuth(clientID, clientSecret, redirectURI, authURL, tokenURL string) *OAuth {
	if authURL == "" {
		authURL = "https://accounts.spotify.com/authorize"
	}
	if tokenURL == "" {
		tokenURL = "https://accounts.spotify.com/api/token"
	}
	return &OAuth{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}}
}

// Configured reports whether credentials and a redirect URI are set.
func (o *OAuth) Configured() bool {
	return o != nil && o.cfg.ClientID != "" && o.cfg.ClientSecret != "" && o.cfg.RedirectURL != ""
}

// AuthCodeURL returns the consent page URL carrying state.
func (o *OAuth) AuthCodeURL(state string) (string, error) {
	if !o.Configured() {
		return "", ErrOAuthNotConfigured
	}
	return o.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true")), nil
}

// Exchange trades an authorization code for tokens.
func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if !o.Configured() {
		return nil, ErrOAuthNotConfigured
	}
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: token exchange failed: %w", err)
	}
	return tok, nil
}
