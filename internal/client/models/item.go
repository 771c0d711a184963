// Package models defines the saved-link record, its partial updates and the
// owner profile carried through the client.
package models

import (
	"slices"
	"strings"
	"time"
)

// Platform classifies where a saved link points to.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformOther     Platform = "other"
)

// InboxCategory is the category every item gets until it is moved.
const InboxCategory = "Inbox"

// DefaultTitle is used for freshly added links.
const DefaultTitle = "New Saved Link"

// ProvisionalPrefix marks ids minted locally before the server assigns one.
const ProvisionalPrefix = "local-"

// Item is a single saved link and its lifecycle fields.
type Item struct {
	ID         string     `json:"id"`
	Owner      string     `json:"user_id"`
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	Thumbnail  string     `json:"thumbnail"`
	Platform   Platform   `json:"platform"`
	Category   string     `json:"category"`
	Tags       []string   `json:"tags"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at"`
	ReviewedAt *time.Time `json:"reviewed_at"`
}

// IsDeleted reports whether the item sits in the trash.
func (i Item) IsDeleted() bool { return i.DeletedAt != nil }

// IsReviewed reports whether the item has left the review queue.
func (i Item) IsReviewed() bool { return i.ReviewedAt != nil }

// Space returns the category used for grouping; blank means Inbox.
func (i Item) Space() string {
	return NormalizeCategory(i.Category)
}

// Clone returns a deep copy so callers can't alias slices or timestamps
// held by the store.
func (i Item) Clone() Item {
	c := i
	c.Tags = slices.Clone(i.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.DeletedAt = cloneTime(i.DeletedAt)
	c.ReviewedAt = cloneTime(i.ReviewedAt)
	return c
}

// NormalizeCategory maps an empty label to InboxCategory.
func NormalizeCategory(c string) string {
	if strings.TrimSpace(c) == "" {
		return InboxCategory
	}
	return c
}

// NewProvisionalID builds a local id for a record the server hasn't
// acknowledged yet.
func NewProvisionalID(seed string) string {
	return ProvisionalPrefix + seed
}

// IsProvisional reports whether id was minted locally.
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, ProvisionalPrefix)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
