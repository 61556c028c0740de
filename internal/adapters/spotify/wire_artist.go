package spotify

import (
	"context"
	"net/url"
	"strconv"
)

// maxPageLimit is the largest page Spotify serves for history endpoints.
const maxPageLimit = 50

// TopArtists returns the user's top artist names, most listened first.
func (c *Client) TopArtists(ctx context.Context, accessToken string, limit int) ([]string, error) {
	query := url.Values{}
	query.Set("time_range", "medium_term")
	if limit > 0 {
		query.Set("limit", strconv.Itoa(min(limit, maxPageLimit)))
	}

	var page topArtistsPage
	if err := c.getJSON(ctx, accessToken, "top artists", "/me/top/artists", query, &page); err != nil {
		return nil, err
	}
	return mapTopArtistNames(page), nil
}
