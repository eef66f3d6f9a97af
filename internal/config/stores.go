package config

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"diskmeta/internal/storage"
)

// OpenCollection opens the collection of the configured backend.
func OpenCollection(ctx context.Context, s *Settings, logger logrus.FieldLogger) (storage.Collection, error) {
	switch s.Backend {
	case BackendSQLite:
		coll, err := storage.OpenSQLCollection(ctx, storage.SQLConfig{
			Path:        s.SQLite.Path,
			Collection:  s.Collection,
			BusyTimeout: s.SQLite.BusyTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return coll, nil
	case BackendBadger:
		coll, err := storage.OpenBadgerCollection(ctx, storage.BadgerConfig{
			Dir:        s.Badger.Dir,
			InMemory:   s.Badger.InMemory,
			Collection: s.Collection,
		}, logger)
		if err != nil {
			return nil, err
		}
		return coll, nil
	case BackendMemory:
		return storage.NewMemoryCollection(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", s.Backend)
	}
}

// OpenStore opens the configured collection and wraps it in a Store.
func OpenStore(ctx context.Context, s *Settings, logger logrus.FieldLogger) (*storage.Store, error) {
	if logger == nil {
		logger = NewLogger("off", nil)
	}
	coll, err := OpenCollection(ctx, s, logger)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{"backend": s.Backend, "collection": s.Collection}).Debug("Opened store")
	return storage.NewStore(coll, logger), nil
}
