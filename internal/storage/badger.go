package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/logger"
)

// Compile-time interface check.
var _ domain.SessionStore = (*BadgerStore)(nil)

const sessionKeyPrefix = "session:"

// BadgerStore persists session snapshots in an embedded BadgerDB. Writes
// are synced before Save returns.
type BadgerStore struct {
	db  *badger.DB
	log *logger.Logger
}

// OpenBadger opens (or creates) a Badger database under dir.
func OpenBadger(dir string, log *logger.Logger) (*BadgerStore, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving badger path: %w", err)
	}

	opts := badger.DefaultOptions(absPath).WithSyncWrites(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %s: %w", absPath, err)
	}

	log = log.Named("badger-store")
	log.Info("BadgerDB opened at %s", absPath)
	return &BadgerStore{db: db, log: log}, nil
}

func sessionKey(id string) []byte { return []byte(sessionKeyPrefix + id) }

// Save writes the session snapshot, replacing any previous one.
func (s *BadgerStore) Save(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(session)
	if err != nil {
		return err
	}

	s.log.Debug("saving session %s (%d bytes)", session.ID, len(data))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(session.ID), data)
	})
}

// Load reads the snapshot stored for id.
func (s *BadgerStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	return Decode(data)
}

// Delete removes the snapshot for id.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(sessionKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		return txn.Delete(sessionKey(id))
	})
}

// List decodes every session snapshot in key order.
func (s *BadgerStore) List(ctx context.Context) ([]*domain.Session, error) {
	var out []*domain.Session
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			sess, err := Decode(data)
			if err != nil {
				return fmt.Errorf("key %s: %w", it.Item().Key(), err)
			}
			out = append(out, sess)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return out, nil
}

// RunGC runs one value-log garbage collection pass.
func (s *BadgerStore) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// RunGCLoop collects garbage every interval until ctx is done.
func (s *BadgerStore) RunGCLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("GC loop started, interval=%s", interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.RunGC(); err != nil {
				s.log.Error("value log GC: %v", err)
			}
		}
	}
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
