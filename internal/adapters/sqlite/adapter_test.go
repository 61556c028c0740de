package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/tuniverse/internal/core/domain"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func summaryFor(id, userID string, at time.Time, codes ...domain.CountryCode) domain.PassportSummary {
	var counts domain.CountryCounts
	for _, c := range codes {
		counts.Add(c, 1)
	}
	return domain.PassportSummary{
		ID:                id,
		UserID:            userID,
		CreatedAt:         at,
		CountryCounts:     counts,
		RegionPercentages: domain.Rollup(counts),
		TotalArtists:      counts.Total(),
	}
}

func TestAdapter_LatestSummary(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		setup   func(t *testing.T, a *Adapter)
		userID  string
		wantID  string
		wantErr error
	}{
		{
			name:    "not found",
			setup:   func(t *testing.T, a *Adapter) {},
			userID:  "nobody",
			wantErr: domain.ErrNotFound,
		},
		{
			name: "newest wins",
			setup: func(t *testing.T, a *Adapter) {
				require.NoError(t, a.SaveSummary(context.Background(), summaryFor("s1", "u1", base, "US")))
				require.NoError(t, a.SaveSummary(context.Background(), summaryFor("s2", "u1", base.Add(time.Hour), "KR")))
				require.NoError(t, a.SaveSummary(context.Background(), summaryFor("s3", "u2", base.Add(2*time.Hour), "FR")))
			},
			userID: "u1",
			wantID: "s2",
		},
		{
			name: "same timestamp falls back to insertion order",
			setup: func(t *testing.T, a *Adapter) {
				require.NoError(t, a.SaveSummary(context.Background(), summaryFor("s1", "u1", base, "US")))
				require.NoError(t, a.SaveSummary(context.Background(), summaryFor("s2", "u1", base, "KR")))
			},
			userID: "u1",
			wantID: "s2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t)
			tt.setup(t, a)

			got, err := a.LatestSummary(context.Background(), tt.userID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
			assert.Equal(t, tt.userID, got.UserID)
		})
	}
}

func TestAdapter_SummaryRoundTripKeepsOrder(t *testing.T) {
	a := newTestAdapter(t)
	at := time.Date(2025, 3, 1, 12, 30, 15, 0, time.UTC)
	want := summaryFor("s1", "u1", at, "KR", "US", "Unknown", "US", "GB")

	require.NoError(t, a.SaveSummary(context.Background(), want))

	got, err := a.LatestSummary(context.Background(), "u1")
	require.NoError(t, err)

	assert.True(t, got.CreatedAt.Equal(at))
	assert.Equal(t, 5, got.TotalArtists)
	assert.Equal(t, want.CountryCounts.Entries(), got.CountryCounts.Entries())
	assert.Equal(t, want.RegionPercentages.Entries(), got.RegionPercentages.Entries())

	wantJSON, err := want.CountryCounts.MarshalJSON()
	require.NoError(t, err)
	gotJSON, err := got.CountryCounts.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))
	assert.Equal(t, `{"KR":1,"US":2,"Unknown":1,"GB":1}`, string(gotJSON))
}

func TestAdapter_EmptySummary(t *testing.T) {
	a := newTestAdapter(t)
	require.NoError(t, a.SaveSummary(context.Background(), summaryFor("s1", "u1", time.Unix(0, 0).UTC())))

	got, err := a.LatestSummary(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.CountryCounts.Len())
	assert.Equal(t, 0, got.RegionPercentages.Len())
}

func TestAdapter_UserArtists(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)

	require.NoError(t, a.RecordArtists(ctx, "u1", []string{"Phoenix", "BTS"}))
	require.NoError(t, a.UpdateArtistOrigin(ctx, "u1", "Phoenix", "FR"))
	// Re-recording keeps the resolved origin.
	require.NoError(t, a.RecordArtists(ctx, "u1", []string{"Phoenix", "Adele"}))
	require.NoError(t, a.RecordArtists(ctx, "u2", []string{"Phoenix"}))

	got, err := a.ListUserArtists(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []domain.UserArtist{
		{UserID: "u1", Name: "Phoenix", Origin: "FR"},
		{UserID: "u1", Name: "BTS"},
		{UserID: "u1", Name: "Adele"},
	}, got)

	other, err := a.ListUserArtists(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Empty(t, other[0].Origin)

	none, err := a.ListUserArtists(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, none)

	err = a.UpdateArtistOrigin(ctx, "u3", "Phoenix", "FR")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdapter_CommunityPosts(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"p1", "p2", "p3"} {
		post, err := domain.NewCommunityPost(id, "traveler", "hello "+id, "US 2, KR 1", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, a.AppendPost(ctx, post))
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "newest first", limit: 10, want: []string{"p3", "p2", "p1"}},
		{name: "limited", limit: 2, want: []string{"p3", "p2"}},
		{name: "unbounded", limit: 0, want: []string{"p3", "p2", "p1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := a.ListPosts(ctx, tt.limit)
			require.NoError(t, err)
			ids := make([]string, 0, len(posts))
			for _, p := range posts {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	posts, err := a.ListPosts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "traveler", posts[0].DisplayName)
	assert.Equal(t, "US 2, KR 1", posts[0].PassportSummary)
	assert.True(t, posts[0].CreatedAt.Equal(base.Add(2*time.Minute)))
}
