package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/logger"
)

// Kinds accepted by Open.
const (
	KindMemory = "memory"
	KindBadger = "badger"
	KindSQLite = "sqlite"
)

// Open builds the session store named by kind. Durable stores live under
// dataDir.
func Open(ctx context.Context, kind, dataDir string, log *logger.Logger) (domain.SessionStore, error) {
	switch kind {
	case KindMemory:
		return NewMemoryStore(log), nil
	case KindBadger:
		return OpenBadger(filepath.Join(dataDir, "badger"), log)
	case KindSQLite:
		return OpenSQLite(ctx, filepath.Join(dataDir, "cookalong.db"), log)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}
