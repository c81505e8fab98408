package testutil

import (
	"path/filepath"
	"testing"

	"github.com/productkb/kbctl/internal/catalog"
	"github.com/productkb/kbctl/internal/store"
)

// NewLocalRepo creates a throwaway local repository backed by a SQLite
// database under t.TempDir(). The store is closed when the test completes.
func NewLocalRepo(t *testing.T) *catalog.LocalRepository {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "kbctl.db"))
	if err != nil {
		t.Fatalf("testutil.NewLocalRepo: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return catalog.NewLocalRepository(st, Logger())
}
