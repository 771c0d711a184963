// Package views derives what the user sees from a snapshot of the item store.
// All functions are pure: no input is modified and "now" is passed in.
package views

import (
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/mymind/internal/client/models"
)

// RetentionWindow is how long a soft-deleted item stays visible in the trash.
const RetentionWindow = 30 * 24 * time.Hour

// Filter holds the transient feed inputs.
type Filter struct {
	// Category narrows the feed to one space. Empty means all.
	Category string
	// Query is matched case-insensitively against title and url.
	Query string
}

// Space is a derived group of active items sharing a category.
type Space struct {
	Name  string
	Items []models.Item
}

// Views is every derivation computed from one snapshot.
type Views struct {
	Active []models.Item
	Trash  []models.Item
	Feed   []models.Item
	Spaces []Space
	Review []models.Item
}

// Derive computes all views at once.
func Derive(items []models.Item, f Filter, now time.Time) Views {
	active := Active(items)
	return Views{
		Active: active,
		Trash:  Trash(items, now),
		Feed:   Feed(active, f),
		Spaces: Spaces(active),
		Review: ReviewQueue(active),
	}
}

// Active returns items that are not soft-deleted, in input order.
func Active(items []models.Item) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if !it.IsDeleted() {
			out = append(out, it)
		}
	}
	return out
}

// InRetention reports whether a deleted item is still restorable at now.
func InRetention(item models.Item, now time.Time) bool {
	return item.DeletedAt != nil && now.Sub(*item.DeletedAt) < RetentionWindow
}

// ExpiresAt is when a deleted item drops out of the trash.
func ExpiresAt(item models.Item) (time.Time, bool) {
	if item.DeletedAt == nil {
		return time.Time{}, false
	}
	return item.DeletedAt.Add(RetentionWindow), true
}

// Trash returns deleted items still inside the retention window.
func Trash(items []models.Item, now time.Time) []models.Item {
	out := make([]models.Item, 0)
	for _, it := range items {
		if InRetention(it, now) {
			out = append(out, it)
		}
	}
	return out
}

// Deleted returns every soft-deleted item regardless of age.
func Deleted(items []models.Item) []models.Item {
	out := make([]models.Item, 0)
	for _, it := range items {
		if it.IsDeleted() {
			out = append(out, it)
		}
	}
	return out
}

// Feed narrows active items by category first, then by query.
func Feed(active []models.Item, f Filter) []models.Item {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Item, 0, len(active))
	for _, it := range active {
		if it.IsDeleted() {
			continue
		}
		if f.Category != "" && it.Space() != models.NormalizeCategory(f.Category) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(it.Title), q) && !strings.Contains(strings.ToLower(it.URL), q) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Spaces groups active items by category. A space is ordered by when its
// category first appeared (its oldest member); members keep input order.
// Empty categories never show up.
func Spaces(active []models.Item) []Space {
	index := make(map[string]int)
	firstSeen := make([]time.Time, 0)
	out := make([]Space, 0)

	for _, it := range active {
		if it.IsDeleted() {
			continue
		}
		name := it.Space()
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Space{Name: name})
			firstSeen = append(firstSeen, it.CreatedAt)
		}
		out[i].Items = append(out[i].Items, it)
		if it.CreatedAt.Before(firstSeen[i]) {
			firstSeen[i] = it.CreatedAt
		}
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return firstSeen[a].Compare(firstSeen[b])
	})

	sorted := make([]Space, len(out))
	for i, idx := range order {
		sorted[i] = out[idx]
	}
	return sorted
}

// ReviewQueue returns unreviewed active items, oldest first.
func ReviewQueue(active []models.Item) []models.Item {
	out := make([]models.Item, 0)
	for _, it := range active {
		if !it.IsDeleted() && !it.IsReviewed() {
			out = append(out, it)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Item) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

// Head is the next item to review.
func Head(queue []models.Item) (models.Item, bool) {
	if len(queue) == 0 {
		return models.Item{}, false
	}
	return queue[0], true
}
