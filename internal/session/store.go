// Package session holds the per-user working state of the API: an upload
// queue and, once a batch finalizes, the combined statement. Sessions live in
// memory only and expire on a TTL.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/akhilmv/statementiq/internal/transaction"
	"github.com/akhilmv/statementiq/internal/uploader"
)

var ErrNotFound = errors.New("session not found")

// Session is one user's working state. Statement access goes through the
// accessor methods so a flag update replaces the transaction list atomically
// rather than editing rows in place under a concurrent reader.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
	Uploader  *uploader.Service

	mu        sync.RWMutex
	statement *transaction.Statement
}

// Statement returns the combined statement, or nil while no batch has
// finalized yet.
func (s *Session) Statement() *transaction.Statement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.statement
}

func (s *Session) setStatement(st *transaction.Statement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statement = st
}

// FlagTransactions marks the given transaction IDs as flagged, replacing the
// whole list in one swap. It returns the number of rows flagged; a session
// without a statement flags nothing.
func (s *Session) FlagTransactions(ids []uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.statement == nil {
		return 0
	}

	updated, n := transaction.FlagAll(s.statement.Transactions, ids)

	st := *s.statement
	st.Transactions = updated
	s.statement = &st

	return n
}

// Remaining reports how long until the session expires.
func (s *Session) Remaining(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}

	return 0
}

// Store keeps sessions in an expiring in-memory cache.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewStore creates a store whose sessions expire ttl after creation.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		cache: cache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

// Create makes a new session wired to its own upload orchestrator. The
// orchestrator's finalized batch lands on the session as its statement.
func (s *Store) Create(parser uploader.Parser) *Session {
	now := time.Now().UTC()

	sess := &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	sess.Uploader = uploader.NewService(parser, sess.setStatement)

	s.cache.Set(sess.ID.String(), sess, cache.DefaultExpiration)

	return sess
}

// Get looks up a live session by ID.
func (s *Store) Get(id uuid.UUID) (*Session, error) {
	v, ok := s.cache.Get(id.String())
	if !ok {
		return nil, ErrNotFound
	}

	return v.(*Session), nil
}

// Delete ends a session immediately.
func (s *Store) Delete(id uuid.UUID) {
	s.cache.Delete(id.String())
}
