package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/productkb/kbctl/internal/config"
	"github.com/productkb/kbctl/internal/store"
)

// Open binds the repository selected by settings. The binding is made once
// at startup and holds for the lifetime of the process; there is no runtime
// backend switching. The returned close function releases local resources
// (a no-op for the remote backend).
func Open(settings *config.Settings, logger *zap.Logger) (Repository, func() error, error) {
	switch settings.Backend {
	case config.BackendLocal:
		if err := os.MkdirAll(settings.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir %q: %w", settings.DataDir, err)
		}
		st, err := store.Open(filepath.Join(settings.DataDir, "kbctl.db"))
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using local backend", zap.String("data_dir", settings.DataDir))
		return NewLocalRepository(st, logger), st.Close, nil

	case config.BackendRemote:
		logger.Info("using remote backend", zap.String("base_url", settings.BaseURL))
		return NewRemoteRepository(settings.BaseURL, logger), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", settings.Backend)
}
