package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtistsByCountry_Sort(t *testing.T) {
	a := ArtistsByCountry{}
	a.Add("US", "kendrick Lamar")
	a.Add("US", "Taylor Swift")
	a.Add("US", "Drake")
	a.Add("US", "Taylor Swift")
	a.Add("US", "Kendrick Lamar")
	a.Add("KR", "IU")
	a.Sort()

	assert.Equal(t, []string{"Drake", "Kendrick Lamar", "kendrick Lamar", "Taylor Swift"}, a["US"])
	assert.Equal(t, []string{"IU"}, a["KR"])
}

func TestDedupeArtistNames(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		limit int
		want  []string
	}{
		{name: "nil input", input: nil, want: []string{}},
		{name: "whitespace duplicates collapse", input: []string{"BTS", " BTS ", "BTS\t"}, want: []string{"BTS"}},
		{name: "case is significant", input: []string{"Adele", "adele"}, want: []string{"Adele", "adele"}},
		{name: "blank entries dropped", input: []string{"", "  ", "IU"}, want: []string{"IU"}},
		{name: "first seen order kept", input: []string{"c", "a", "c", "b"}, want: []string{"c", "a", "b"}},
		{name: "limit applies after dedup", input: []string{"a", "a", "b", "c"}, limit: 2, want: []string{"a", "b"}},
		{name: "non-positive limit means none", input: []string{"a", "b"}, limit: -1, want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeArtistNames(tt.input, tt.limit))
		})
	}
}

func TestNewCommunityPost(t *testing.T) {
	now := time.Date(2025, 10, 3, 12, 0, 0, 0, time.UTC)

	post, err := NewCommunityPost("p1", "  ", " ", "<b>5 countries</b>", now)
	require.NoError(t, err)
	assert.Equal(t, "Anonymous traveler", post.DisplayName)
	assert.Equal(t, "[empty message]", post.Message)
	assert.Equal(t, "<b>5 countries</b>", post.PassportSummary)
	assert.Equal(t, now, post.CreatedAt)

	post, err = NewCommunityPost("p2", " Max ", " hello ", "", now)
	require.NoError(t, err)
	assert.Equal(t, "Max", post.DisplayName)
	assert.Equal(t, "hello", post.Message)

	_, err = NewCommunityPost("", "a", "b", "", now)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
