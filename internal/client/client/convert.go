package client

import (
	"github.com/dmitrijs2005/mymind/internal/client/models"
	"github.com/dmitrijs2005/mymind/internal/rpc"
)

func toWire(i models.Item) rpc.Item {
	c := i.Clone()
	return rpc.Item{
		ID:         c.ID,
		Owner:      c.Owner,
		URL:        c.URL,
		Title:      c.Title,
		Thumbnail:  c.Thumbnail,
		Platform:   string(c.Platform),
		Category:   c.Category,
		Tags:       c.Tags,
		CreatedAt:  c.CreatedAt,
		DeletedAt:  c.DeletedAt,
		ReviewedAt: c.ReviewedAt,
	}
}

func fromWire(i rpc.Item) models.Item {
	return models.Item{
		ID:         i.ID,
		Owner:      i.Owner,
		URL:        i.URL,
		Title:      i.Title,
		Thumbnail:  i.Thumbnail,
		Platform:   models.Platform(i.Platform),
		Category:   models.NormalizeCategory(i.Category),
		Tags:       i.Tags,
		CreatedAt:  i.CreatedAt,
		DeletedAt:  i.DeletedAt,
		ReviewedAt: i.ReviewedAt,
	}.Clone()
}

func settingsFromWire(s rpc.Settings) models.Settings {
	return models.Settings{
		AppLockEnabled:      s.AppLockEnabled,
		BiometricRegistered: s.BiometricRegistered,
	}
}
