package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nekogravitycat/venue-booking-backend/internal/config"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
)

// OpenStore builds the partition store selected by cfg.StoreDriver.
// The returned close function releases the connection pool or client.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil

	case config.DriverFile:
		blobs, err := storage.NewLocalStorage(filepath.Join(cfg.DataDir, "store"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return store.NewFileStore(blobs), func() {}, nil

	case config.DriverPostgres:
		st, pool, err := store.ConnectPgx(ctx, cfg.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to db: %w", err)
		}
		return st, pool.Close, nil

	case config.DriverMongo:
		client, err := store.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		}
		return store.NewMongoStore(client, cfg.MongoDatabase), closeFn, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", store.ErrUnknownDriver, cfg.StoreDriver)
}
