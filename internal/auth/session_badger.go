package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const sessionKeyPrefix = "session:"

// BadgerSessionStore persists sessions across restarts. Every write carries
// the backing-store TTL so abandoned entries age out even if cleanup never
// runs; the rolling session expiry is enforced separately on read.
type BadgerSessionStore struct {
	db       *badger.DB
	storeTTL time.Duration
}

func NewBadgerSessionStore(db *badger.DB, storeTTL time.Duration) *BadgerSessionStore {
	return &BadgerSessionStore{db: db, storeTTL: storeTTL}
}

// OpenBadger opens (or creates) a badger database at path with its own
// logger silenced.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return db, nil
}

func (s *BadgerSessionStore) put(txn *badger.Txn, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	entry := badger.NewEntry([]byte(sessionKeyPrefix+session.ID), data)
	if s.storeTTL > 0 {
		entry = entry.WithTTL(s.storeTTL)
	}
	return txn.SetEntry(entry)
}

func (s *BadgerSessionStore) Create(_ context.Context, session *Session) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return s.put(txn, session)
	})
}

func (s *BadgerSessionStore) Get(_ context.Context, id string) (*Session, error) {
	var session Session

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	return &session, nil
}

func (s *BadgerSessionStore) Touch(_ context.Context, id string, newExpiry time.Time) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		var session Session
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		}); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}

		session.LastAccessedAt = time.Now()
		session.ExpiresAt = newExpiry

		return s.put(txn, &session)
	})
}

func (s *BadgerSessionStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(sessionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// scan returns the ids of stored sessions matching keep.
func (s *BadgerSessionStore) scan(keep func(*Session) bool) ([]string, error) {
	var ids []string

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var session Session
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			}); err != nil {
				continue
			}

			if keep(&session) {
				ids = append(ids, session.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	return ids, nil
}

func (s *BadgerSessionStore) deleteAll(ctx context.Context, ids []string) int {
	count := 0
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			continue
		}
		count++
	}
	return count
}

func (s *BadgerSessionStore) DeleteByUserID(ctx context.Context, userID uint) (int, error) {
	ids, err := s.scan(func(session *Session) bool { return session.UserID == userID })
	if err != nil {
		return 0, err
	}
	return s.deleteAll(ctx, ids), nil
}

func (s *BadgerSessionStore) CleanupExpired(ctx context.Context) (int, error) {
	ids, err := s.scan(func(session *Session) bool { return session.IsExpired() })
	if err != nil {
		return 0, err
	}
	return s.deleteAll(ctx, ids), nil
}

// RunValueLogGC reclaims space left behind by expired and deleted entries.
// badger.ErrNoRewrite just means there was nothing to collect.
func (s *BadgerSessionStore) RunValueLogGC() error {
	err := s.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

func (s *BadgerSessionStore) Close() error {
	return s.db.Close()
}
