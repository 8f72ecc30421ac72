package fixture

import (
	"context"
	"fmt"
	"strings"

	"github.com/sentidash/sentidash/internal/config"
	"github.com/sentidash/sentidash/internal/storage/sqlite"
)

// OpenStore opens the database at path, in memory when path is empty, and
// seeds it with demo data when it holds no records.
func OpenStore(ctx context.Context, path string, seed sqlite.SeedOptions) (*sqlite.SQLiteStorage, error) {
	if strings.TrimSpace(path) == "" {
		path = sqlite.MemoryPath
	}
	store, err := sqlite.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}

	empty, err := store.IsEmpty(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if empty {
		if err := store.Seed(ctx, seed); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed fixture data: %w", err)
		}
	}
	return store, nil
}

// OpenStoreFromConfig opens the store named by fixture_db.
func OpenStoreFromConfig(ctx context.Context) (*sqlite.SQLiteStorage, error) {
	return OpenStore(ctx, config.Get("fixture_db", ""), sqlite.SeedOptions{})
}
