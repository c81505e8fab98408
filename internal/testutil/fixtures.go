package testutil

import (
	"fmt"

	"github.com/productkb/kbctl/pkg/models"
)

// Item returns a minimal valid catalog item with the given id.
func Item(id string) *models.Item {
	return &models.Item{
		ID:   id,
		Name: "Item " + id,
		Desc: "test item",
		Tags: []string{"fixture"},
	}
}

// Items returns n sequentially numbered items (id-000, id-001, ...), handy
// for pagination tests that depend on insertion order.
func Items(n int) []*models.Item {
	out := make([]*models.Item, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Item(fmt.Sprintf("id-%03d", i)))
	}
	return out
}
