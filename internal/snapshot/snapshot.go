// Package snapshot exports and imports the full catalog as a YAML document.
// A snapshot doubles as a plain backup and as the migration path between
// the local and remote backends.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/productkb/kbctl/internal/catalog"
	"github.com/productkb/kbctl/pkg/models"
)

// pageSize is the search page used while draining the repository.
const pageSize = 200

// Snapshot is the on-disk export format.
type Snapshot struct {
	ExportedAt time.Time     `yaml:"exported_at"`
	Items      []models.Item `yaml:"items"`
}

// Export drains repo via empty-query searches and writes a Snapshot to w.
// Returns the number of items written.
func Export(ctx context.Context, repo catalog.Repository, w io.Writer) (int, error) {
	var items []models.Item
	for offset := 0; ; {
		res, err := repo.Search(ctx, "", pageSize, offset)
		if err != nil {
			return 0, fmt.Errorf("export page at offset %d: %w", offset, err)
		}
		items = append(items, res.Items...)
		offset += len(res.Items)
		if len(res.Items) == 0 || offset >= res.Total {
			break
		}
	}

	snap := Snapshot{ExportedAt: time.Now().UTC(), Items: items}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(&snap); err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}
	return len(items), nil
}

// Import creates every item from the snapshot read from r. With
// skipExisting, ids already present are skipped instead of failing the
// whole import. Returns the number of items created.
func Import(ctx context.Context, repo catalog.Repository, r io.Reader, skipExisting bool) (int, error) {
	var snap Snapshot
	if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("decode snapshot: %w", err)
	}

	created := 0
	for i := range snap.Items {
		it := snap.Items[i]
		if err := repo.Create(ctx, &it); err != nil {
			if skipExisting && errors.Is(err, catalog.ErrDuplicateID) {
				continue
			}
			return created, fmt.Errorf("import item %q: %w", it.ID, err)
		}
		created++
	}
	return created, nil
}
