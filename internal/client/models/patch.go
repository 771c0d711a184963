package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// TimeField is a nullable timestamp assignment. A nil Value clears the field.
type TimeField struct {
	Value *time.Time
}

// Patch is a partial update of an item. Nil fields are left untouched.
// Identity fields (id, owner, created_at) are never patchable.
type Patch struct {
	URL        *string
	Title      *string
	Thumbnail  *string
	Platform   *Platform
	Category   *string
	Tags       *[]string
	DeletedAt  *TimeField
	ReviewedAt *TimeField
}

// SetTime returns a TimeField assigning t.
func SetTime(t time.Time) *TimeField {
	return &TimeField{Value: &t}
}

// ClearTime returns a TimeField resetting the timestamp to null.
func ClearTime() *TimeField {
	return &TimeField{}
}

// IsEmpty reports whether the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.URL == nil && p.Title == nil && p.Thumbnail == nil && p.Platform == nil &&
		p.Category == nil && p.Tags == nil && p.DeletedAt == nil && p.ReviewedAt == nil
}

// ApplyTo returns a copy of item with the patch applied.
func (p Patch) ApplyTo(item Item) Item {
	out := item.Clone()
	if p.URL != nil {
		out.URL = *p.URL
	}
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Thumbnail != nil {
		out.Thumbnail = *p.Thumbnail
	}
	if p.Platform != nil {
		out.Platform = *p.Platform
	}
	if p.Category != nil {
		out.Category = NormalizeCategory(*p.Category)
	}
	if p.Tags != nil {
		out.Tags = slices.Clone(*p.Tags)
		if out.Tags == nil {
			out.Tags = []string{}
		}
	}
	if p.DeletedAt != nil {
		out.DeletedAt = cloneTime(p.DeletedAt.Value)
	}
	if p.ReviewedAt != nil {
		out.ReviewedAt = cloneTime(p.ReviewedAt.Value)
	}
	return out
}

// FullPatch rewrites every mutable field of the target with item's values.
// Reconciliation uses it to push the local state of a diverged record.
func FullPatch(item Item) Patch {
	tags := slices.Clone(item.Tags)
	return Patch{
		URL:        &item.URL,
		Title:      &item.Title,
		Thumbnail:  &item.Thumbnail,
		Platform:   &item.Platform,
		Category:   &item.Category,
		Tags:       &tags,
		DeletedAt:  &TimeField{Value: cloneTime(item.DeletedAt)},
		ReviewedAt: &TimeField{Value: cloneTime(item.ReviewedAt)},
	}
}

// Fields encodes the patch as column name to JSON value, the shape the
// remote update call carries. Cleared timestamps encode as null.
func (p Patch) Fields() (map[string]json.RawMessage, error) {
	values := make(map[string]any)
	if p.URL != nil {
		values["url"] = *p.URL
	}
	if p.Title != nil {
		values["title"] = *p.Title
	}
	if p.Thumbnail != nil {
		values["thumbnail"] = *p.Thumbnail
	}
	if p.Platform != nil {
		values["platform"] = *p.Platform
	}
	if p.Category != nil {
		values["category"] = NormalizeCategory(*p.Category)
	}
	if p.Tags != nil {
		tags := *p.Tags
		if tags == nil {
			tags = []string{}
		}
		values["tags"] = tags
	}
	if p.DeletedAt != nil {
		values["deleted_at"] = p.DeletedAt.Value
	}
	if p.ReviewedAt != nil {
		values["reviewed_at"] = p.ReviewedAt.Value
	}

	out := make(map[string]json.RawMessage, len(values))
	for name, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out[name] = b
	}
	return out, nil
}
