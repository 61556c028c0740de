package spotify

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
)

func (c *Client) recentlyPlayed(ctx context.Context, accessToken string, limit int) (playHistoryPage, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(min(limit, maxPageLimit)))
	}

	var page playHistoryPage
	err := c.getJSON(ctx, accessToken, "recently played", "/me/player/recently-played", query, &page)
	return page, err
}

// RecentlyPlayedArtists returns the distinct artists of the last limit plays,
// most recent first.
func (c *Client) RecentlyPlayedArtists(ctx context.Context, accessToken string, limit int) ([]string, error) {
	page, err := c.recentlyPlayed(ctx, accessToken, limit)
	if err != nil {
		return nil, err
	}
	return mapPlayHistoryArtists(page), nil
}

// NowPlaying describes the most recently played track, or nil when the
// history is empty.
func (c *Client) NowPlaying(ctx context.Context, accessToken string) (*ports.NowPlaying, error) {
	page, err := c.recentlyPlayed(ctx, accessToken, 1)
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	return mapNowPlaying(page.Items[0].Track), nil
}
