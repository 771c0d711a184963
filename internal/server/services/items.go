package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/mymind/internal/common"
	"github.com/dmitrijs2005/mymind/internal/logging"
	"github.com/dmitrijs2005/mymind/internal/server/models"
	"github.com/dmitrijs2005/mymind/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mymind/internal/server/thumbs"
	"github.com/google/uuid"
)

const inboxCategory = "Inbox"

// provisionalPrefix is what clients put in front of ids they mint before
// an insert is acknowledged.
const provisionalPrefix = "local-"

var platforms = map[string]bool{
	"youtube":   true,
	"tiktok":    true,
	"instagram": true,
	"other":     true,
}

// ItemService is the remote half of the item collection. Every call is
// scoped to the authenticated user.
type ItemService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	presigner   thumbs.Presigner
	logger      logging.Logger
	now         func() time.Time
	newID       func() string
}

func NewItemService(db *sql.DB, m repomanager.RepositoryManager, p thumbs.Presigner, logger logging.Logger) *ItemService {
	return &ItemService{
		db:          db,
		repomanager: m,
		presigner:   p,
		logger:      logger.With("module", "items"),
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

// FetchAll returns the whole collection, trash included, newest first.
// Stored s3 thumbnail references come back as presigned URLs; one that
// fails to sign is blanked rather than failing the fetch.
func (s *ItemService) FetchAll(ctx context.Context, userID string) ([]models.Item, error) {
	items, err := s.repomanager.Items(s.db).FetchAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		bucket, key, ok := thumbs.ParseRef(items[i].Thumbnail)
		if !ok {
			continue
		}
		signed, err := s.presigner.PresignGet(ctx, bucket, key)
		if err != nil {
			s.logger.Warn(ctx, "presign thumbnail failed", "item", items[i].ID, "error", err)
			items[i].Thumbnail = ""
			continue
		}
		items[i].Thumbnail = signed
	}
	return items, nil
}

// Insert stores a new item and returns its id. A provisional client id
// carrying a uuid keeps that uuid as the row id, so a retried insert
// lands on the same row instead of adding a second one.
func (s *ItemService) Insert(ctx context.Context, userID string, item models.Item) (string, error) {
	if err := validateURL(item.URL); err != nil {
		return "", err
	}
	platform, err := normalizePlatform(item.Platform)
	if err != nil {
		return "", err
	}

	item.ID = s.rowID(item.ID)
	item.UserID = userID
	item.Platform = platform
	item.Category = normalizeCategory(item.Category)
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now().UTC()
	}

	return s.repomanager.Items(s.db).Insert(ctx, &item)
}

func (s *ItemService) rowID(clientID string) string {
	if u, err := uuid.Parse(strings.TrimPrefix(clientID, provisionalPrefix)); err == nil {
		return u.String()
	}
	return s.newID()
}

// Update applies a partial update. fields maps column names to JSON values;
// a null clears deleted_at or reviewed_at.
func (s *ItemService) Update(ctx context.Context, userID, id string, fields map[string]json.RawMessage) error {
	values, err := decodeFields(fields)
	if err != nil {
		return err
	}
	return s.repomanager.Items(s.db).Update(ctx, userID, id, values)
}

func (s *ItemService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Items(s.db).Delete(ctx, userID, id)
}

func (s *ItemService) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	return s.repomanager.Items(s.db).DeleteMany(ctx, userID, ids)
}

func decodeFields(fields map[string]json.RawMessage) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", common.ErrorValidation)
	}

	values := make(map[string]any, len(fields))
	for name, raw := range fields {
		var (
			v   any
			err error
		)
		switch name {
		case "url":
			var s string
			if err = json.Unmarshal(raw, &s); err == nil {
				err = validateURL(s)
			}
			v = s
		case "title", "thumbnail":
			var s string
			err = json.Unmarshal(raw, &s)
			v = s
		case "platform":
			var s string
			if err = json.Unmarshal(raw, &s); err == nil {
				s, err = normalizePlatform(s)
			}
			v = s
		case "category":
			var s string
			err = json.Unmarshal(raw, &s)
			v = normalizeCategory(s)
		case "tags":
			var tags []string
			err = json.Unmarshal(raw, &tags)
			if tags == nil {
				tags = []string{}
			}
			v = tags
		case "deleted_at", "reviewed_at":
			var t *time.Time
			err = json.Unmarshal(raw, &t)
			if t != nil {
				v = t.UTC()
			}
		default:
			return nil, fmt.Errorf("%w: field %q cannot be updated", common.ErrorValidation, name)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", common.ErrorValidation, name, err)
		}
		values[name] = v
	}
	return values, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: invalid url %q", common.ErrorValidation, raw)
	}
	return nil
}

func normalizePlatform(p string) (string, error) {
	if p == "" {
		return "other", nil
	}
	if !platforms[p] {
		return "", fmt.Errorf("%w: unknown platform %q", common.ErrorValidation, p)
	}
	return p, nil
}

func normalizeCategory(c string) string {
	if strings.TrimSpace(c) == "" {
		return inboxCategory
	}
	return c
}
