// Package catalog provides the five-operation storage contract for catalog
// items, with a local SQLite-backed implementation and a remote HTTP API
// implementation. Which one serves a process is fixed at startup by Open.
package catalog

import (
	"context"

	"github.com/productkb/kbctl/pkg/models"
)

// SearchResult wraps one page of matching items with the total match count.
type SearchResult struct {
	Total int           `json:"total"`
	Items []models.Item `json:"items"`
}

// Patch describes a partial update. Nil fields are left untouched; Tags and
// Images are replaced wholesale only when non-nil.
type Patch struct {
	Name   *string
	Desc   *string
	Tags   []string
	Images []string
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Name == nil && p.Desc == nil && p.Tags == nil && p.Images == nil
}

// Repository is the storage contract shared by the local and remote
// backends.
type Repository interface {
	// Search returns items whose id, name, desc, or joined tags contain
	// query case-insensitively (the local backend also matches joined
	// image URLs). An empty query matches all. Pagination is a plain
	// slice of the stored order.
	Search(ctx context.Context, query string, limit, offset int) (*SearchResult, error)

	// Create persists a new item. Fails with ErrDuplicateID when the id
	// is already present. Images are clamped to models.MaxImages.
	Create(ctx context.Context, item *models.Item) error

	// Get returns a single item by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Item, error)

	// Update merges patch over the existing record, or ErrNotFound.
	Update(ctx context.Context, id string, patch Patch) error

	// Remove deletes an item by id. The local backend treats a missing
	// id as a no-op; the remote backend surfaces the server's answer.
	Remove(ctx context.Context, id string) error
}

// DefaultLimit is applied when a caller passes a non-positive limit.
const DefaultLimit = 20

// maxLimit caps a single search page.
const maxLimit = 1000

// normalizePage applies defaults and caps to pagination arguments.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
