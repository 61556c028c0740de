package rest

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ewilliams-labs/tuniverse/internal/adapters/spotify"
	"github.com/ewilliams-labs/tuniverse/internal/logging"
)

// appTokens issues the HS256 app token handed to the web UI after login.
type appTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newAppTokens(secret string, ttl time.Duration) *appTokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &appTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for subject. It returns "" when no secret is set.
func (t *appTokens) Issue(subject string) (string, error) {
	if len(t.secret) == 0 {
		return "", nil
	}
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates token and returns its subject.
func (t *appTokens) Parse(token string) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("app tokens disabled")
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Login redirects to the Spotify consent page.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		state = h.cfg.FrontendURL
	}

	target, err := h.oauth.AuthCodeURL(state)
	if err != nil {
		if errors.Is(err, spotify.ErrOAuthNotConfigured) {
			writeError(w, http.StatusInternalServerError, "Spotify env vars not configured")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Callback exchanges the authorization code and hands the tokens to the web
// UI in the URL fragment.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if authErr := q.Get("error"); authErr != "" || q.Get("code") == "" {
		if authErr == "" {
			authErr = "missing code"
		}
		writeError(w, http.StatusBadRequest, "Spotify auth error: "+authErr)
		return
	}
	if !h.oauth.Configured() {
		writeError(w, http.StatusInternalServerError, "Spotify env vars not configured")
		return
	}

	tok, err := h.oauth.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("rest: token exchange failed")
		writeError(w, http.StatusBadRequest, "Token exchange failed")
		return
	}

	profile, err := h.svc.Profile(r.Context(), tok.AccessToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	subject := profile.ID
	if subject == "" {
		subject = "unknown"
	}
	appToken, err := h.tokens.Issue(subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	fragment := url.Values{}
	fragment.Set("access_token", tok.AccessToken)
	fragment.Set("refresh_token", tok.RefreshToken)
	fragment.Set("app_token", appToken)
	fragment.Set("display_name", profile.DisplayName)
	fragment.Set("spotify_id", profile.ID)

	http.Redirect(w, r, h.redirectTarget(q.Get("state"))+"#"+fragment.Encode(), http.StatusFound)
}

// redirectTarget honours state only when it points back at the frontend's
// scheme and host.
func (h *Handler) redirectTarget(state string) string {
	if state == "" || h.cfg.FrontendURL == "" {
		return h.cfg.FrontendURL
	}
	frontend, err := url.Parse(h.cfg.FrontendURL)
	if err != nil {
		return h.cfg.FrontendURL
	}
	target, err := url.Parse(state)
	if err != nil || target.User != nil ||
		!strings.EqualFold(target.Scheme, frontend.Scheme) ||
		!strings.EqualFold(target.Host, frontend.Host) {
		return h.cfg.FrontendURL
	}
	return state
}
