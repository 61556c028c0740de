package ports

import (
	"context"

	"github.com/ewilliams-labs/tuniverse/internal/core/domain"
)

// PassportRepository persists passport summaries and the artists recorded
// for each user.
type PassportRepository interface {
	SaveSummary(ctx context.Context, s domain.PassportSummary) error
	LatestSummary(ctx context.Context, userID string) (domain.PassportSummary, error)
	RecordArtists(ctx context.Context, userID string, names []string) error
	ListUserArtists(ctx context.Context, userID string) ([]domain.UserArtist, error)
	UpdateArtistOrigin(ctx context.Context, userID, name, origin string) error
}

// CommunityRepository is the append-only community feed store.
type CommunityRepository interface {
	AppendPost(ctx context.Context, p domain.CommunityPost) error
	ListPosts(ctx context.Context, limit int) ([]domain.CommunityPost, error)
}
