package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/tuniverse/internal/core/domain"
	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
	"github.com/ewilliams-labs/tuniverse/internal/metrics"
)

// DefaultFeedLimit is how many posts Feed returns when no limit is given.
const DefaultFeedLimit = 50

// Community manages the append-only share feed.
type Community struct {
	repo    ports.CommunityRepository
	now     func() time.Time
	newID   func() string
	metrics *metrics.Metrics
}

func NewCommunity(repo ports.CommunityRepository, m *metrics.Metrics) *Community {
	return &Community{repo: repo, now: time.Now, newID: uuid.NewString, metrics: m}
}

// Share appends a post. Blank names and messages get placeholders.
func (c *Community) Share(ctx context.Context, displayName, message, passportSummary string) (domain.CommunityPost, error) {
	post, err := domain.NewCommunityPost(c.newID(), displayName, message, passportSummary, c.now())
	if err != nil {
		return domain.CommunityPost{}, fmt.Errorf("community: %w", err)
	}
	if err := c.repo.AppendPost(ctx, post); err != nil {
		return domain.CommunityPost{}, fmt.Errorf("community: failed to append post: %w", err)
	}
	c.metrics.IncCommunityPost()
	return post, nil
}

// Feed returns up to limit posts, newest first.
func (c *Community) Feed(ctx context.Context, limit int) ([]domain.CommunityPost, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	posts, err := c.repo.ListPosts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("community: failed to list posts: %w", err)
	}
	return posts, nil
}
