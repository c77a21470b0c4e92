package state

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"

	"salesight/internal/dataset"
)

// Session holds per-user state: the dataset snapshot from the most recent
// sync. Scoping the cache per session (rather than process-global) keeps
// concurrent users isolated.
type Session struct {
	Token string

	mu sync.RWMutex
	ds *dataset.Dataset
}

// Dataset returns the current snapshot, or nil before the first sync.
func (s *Session) Dataset() *dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

// SetDataset replaces the snapshot wholesale.
func (s *Session) SetDataset(ds *dataset.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
}

// Clear drops the snapshot.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = nil
}

// Store maps session tokens to sessions, evicting idle sessions after the
// configured TTL.
type Store struct {
	cache *ttlcache.Cache[string, *Session]
}

// NewStore builds a session store. Eviction runs until Stop is called.
func NewStore(ttl time.Duration) *Store {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *Session](ttl),
	)
	go cache.Start()
	return &Store{cache: cache}
}

// Create registers a fresh session and returns it.
func (st *Store) Create() *Session {
	s := &Session{Token: uuid.NewString()}
	st.cache.Set(s.Token, s, ttlcache.DefaultTTL)
	return s
}

// Get looks up a session by token, refreshing its TTL.
func (st *Store) Get(token string) (*Session, bool) {
	item := st.cache.Get(token)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Delete removes a session (logout).
func (st *Store) Delete(token string) {
	st.cache.Delete(token)
}

// Stop halts TTL eviction.
func (st *Store) Stop() {
	st.cache.Stop()
}
