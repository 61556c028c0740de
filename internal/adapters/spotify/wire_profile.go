package spotify

import (
	"context"

	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
)

// Profile fetches the current user's profile.
func (c *Client) Profile(ctx context.Context, accessToken string) (ports.Profile, error) {
	var p spotifyProfile
	if err := c.getJSON(ctx, accessToken, "profile", "/me", nil, &p); err != nil {
		return ports.Profile{}, err
	}
	return ports.Profile{ID: p.ID, DisplayName: p.DisplayName}, nil
}
