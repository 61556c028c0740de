package domain

import (
	"strings"
	"time"
)

const (
	defaultDisplayName = "Anonymous traveler"
	emptyMessage       = "[empty message]"
)

// CommunityPost is an entry of the append-only community feed.
type CommunityPost struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name"`
	Message         string    `json:"message"`
	PassportSummary string    `json:"passport_summary"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewCommunityPost trims the inputs and fills in placeholders for a blank
// display name or message.
func NewCommunityPost(id, displayName, message, passportSummary string, now time.Time) (CommunityPost, error) {
	if id == "" {
		return CommunityPost{}, ErrInvalidArgument
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = defaultDisplayName
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = emptyMessage
	}
	return CommunityPost{
		ID:              id,
		DisplayName:     displayName,
		Message:         message,
		PassportSummary: passportSummary,
		CreatedAt:       now.UTC(),
	}, nil
}
