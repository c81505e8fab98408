package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/productkb/kbctl/internal/store"
	"github.com/productkb/kbctl/pkg/models"
)

// itemsSlot is the single storage slot holding the serialized item array.
const itemsSlot = "items"

// Compile-time interface guard.
var _ Repository = (*LocalRepository)(nil)

// LocalRepository implements Repository against a local key-value slot.
// The whole item array is read into memory for every operation and
// rewritten wholesale on every mutation. There is no cross-process
// coordination; concurrent writers from separate processes can overwrite
// each other (accepted for a single-user client).
type LocalRepository struct {
	store  *store.Store
	logger *zap.Logger
}

// NewLocalRepository creates a Repository backed by the given slot store.
func NewLocalRepository(st *store.Store, logger *zap.Logger) *LocalRepository {
	return &LocalRepository{store: st, logger: logger}
}

func (r *LocalRepository) Search(ctx context.Context, query string, limit, offset int) (*SearchResult, error) {
	limit, offset = normalizePage(limit, offset)

	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	matched := items
	if q != "" {
		matched = make([]models.Item, 0, len(items))
		for i := range items {
			if matchesQuery(&items[i], q) {
				matched = append(matched, items[i])
			}
		}
	}

	r.logger.Debug("local search",
		zap.String("query", q),
		zap.Int("total", len(matched)),
		zap.Int("limit", limit),
		zap.Int("offset", offset),
	)

	page := matched[clampIndex(offset, len(matched)):clampIndex(offset+limit, len(matched))]
	return &SearchResult{Total: len(matched), Items: append([]models.Item{}, page...)}, nil
}

func (r *LocalRepository) Create(ctx context.Context, item *models.Item) error {
	items, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == item.ID {
			return ErrDuplicateID
		}
	}

	stored := item.Clone()
	stored.Images = models.ClampImages(stored.Images)
	items = append(items, *stored)

	if err := r.save(ctx, items); err != nil {
		return err
	}
	r.logger.Debug("local create", zap.String("id", item.ID))
	return nil
}

func (r *LocalRepository) Get(ctx context.Context, id string) (*models.Item, error) {
	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return items[i].Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *LocalRepository) Update(ctx context.Context, id string, patch Patch) error {
	items, err := r.load(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range items {
		if items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	it := &items[idx]
	if patch.Name != nil {
		it.Name = *patch.Name
	}
	if patch.Desc != nil {
		it.Desc = *patch.Desc
	}
	if patch.Tags != nil {
		it.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.Images != nil {
		it.Images = models.ClampImages(patch.Images)
	}

	if err := r.save(ctx, items); err != nil {
		return err
	}
	r.logger.Debug("local update", zap.String("id", id))
	return nil
}

func (r *LocalRepository) Remove(ctx context.Context, id string) error {
	items, err := r.load(ctx)
	if err != nil {
		return err
	}

	kept := items[:0]
	for i := range items {
		if items[i].ID != id {
			kept = append(kept, items[i])
		}
	}
	if len(kept) == len(items) {
		// Removing a missing id is not an error; nothing to rewrite.
		return nil
	}

	if err := r.save(ctx, kept); err != nil {
		return err
	}
	r.logger.Debug("local remove", zap.String("id", id))
	return nil
}

// load reads the full item array from the slot. A never-written slot is an
// empty catalog.
func (r *LocalRepository) load(ctx context.Context) ([]models.Item, error) {
	raw, err := r.store.Get(ctx, itemsSlot)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []models.Item{}, nil
	}
	var items []models.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode items slot: %w", err)
	}
	return items, nil
}

// save rewrites the full item array into the slot.
func (r *LocalRepository) save(ctx context.Context, items []models.Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode items slot: %w", err)
	}
	return r.store.Put(ctx, itemsSlot, raw)
}

// matchesQuery reports whether q (already lowercased) occurs in the item's
// id, name, desc, joined tags, or joined image URLs.
func matchesQuery(it *models.Item, q string) bool {
	blob := strings.ToLower(strings.Join([]string{
		it.ID,
		it.Name,
		it.Desc,
		strings.Join(it.Tags, ","),
		strings.Join(it.Images, ","),
	}, "\n"))
	return strings.Contains(blob, q)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
