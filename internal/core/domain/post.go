package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxPostLength is the maximum post content length in runes.
const MaxPostLength = 280

// Post is a short text owned by exactly one account. OwnerUsername is
// denormalized for the feed and is not authoritative.
type Post struct {
	ID            int64     `json:"id"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	OwnerID       string    `json:"owner_id"`
	OwnerUsername string    `json:"owner_username"`
}

// NormalizeContent trims surrounding whitespace and enforces the length rules.
func NormalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > MaxPostLength {
		return "", fmt.Errorf("%w: content exceeds %d characters", ErrInvalidInput, MaxPostLength)
	}
	return content, nil
}
