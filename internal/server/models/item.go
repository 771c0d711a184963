package models

import "time"

// Item is one row of the items table.
type Item struct {
	ID         string
	UserID     string
	URL        string
	Title      string
	Thumbnail  string
	Platform   string
	Category   string
	Tags       []string
	CreatedAt  time.Time
	DeletedAt  *time.Time
	ReviewedAt *time.Time
}
