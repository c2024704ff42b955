// Package cache persists fetched datasets between runs so views can render
// instantly while a background sync reconciles them against the backend.
//
// The store is best-effort by design: the remote store is always
// authoritative, so storage and serialization failures are logged and
// reported as a miss, never returned to the caller. Entries never expire in
// storage; staleness is judged at read time and expired entries are removed
// on the way out.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxAge is the read-time freshness ceiling when callers have no
// opinion of their own.
const DefaultMaxAge = time.Hour

const (
	filePrefix    = "cache_"
	fileSuffix    = ".json"
	schemaVersion = 1
)

// entry is the on-disk shape of one cached dataset.
type entry struct {
	Data          json.RawMessage `json:"data"`
	StoredAt      time.Time       `json:"stored_at"`
	SchemaVersion int             `json:"schema_version"`
}

// Store is a file-per-key cache rooted at a single directory.
type Store struct {
	dir string
	log *zap.Logger
	now func() time.Time
}

// New creates a Store rooted at dir, creating it if needed. A nil logger is
// replaced with a no-op one.
func New(dir string, log *zap.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("cache dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: dir, log: log, now: time.Now}, nil
}

// Write stores data under key, replacing any previous entry. Failures are
// logged and swallowed; the cache is never load-bearing for correctness.
func (s *Store) Write(key string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		s.log.Warn("cache write skipped", zap.String("key", key), zap.Error(err))
		return
	}
	blob, err := json.Marshal(entry{Data: raw, StoredAt: s.now(), SchemaVersion: schemaVersion})
	if err != nil {
		s.log.Warn("cache write skipped", zap.String("key", key), zap.Error(err))
		return
	}

	// Write-then-rename keeps readers from ever seeing a partial entry.
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		_ = os.Remove(tmp)
	}
}

// Read loads the entry under key into dest when it exists and is younger
// than maxAge. It reports whether dest was populated. An entry that exists
// but has expired is removed. maxAge <= 0 means nothing is fresh enough.
func (s *Store) Read(key string, maxAge time.Duration, dest any) bool {
	path := s.path(key)
	blob, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	var e entry
	if err := json.Unmarshal(blob, &e); err != nil {
		s.log.Warn("cache entry corrupt, dropping", zap.String("key", key), zap.Error(err))
		_ = os.Remove(path)
		return false
	}
	if !isFresh(e.StoredAt, maxAge, s.now()) {
		_ = os.Remove(path)
		return false
	}
	if err := json.Unmarshal(e.Data, dest); err != nil {
		s.log.Warn("cache payload corrupt, dropping", zap.String("key", key), zap.Error(err))
		_ = os.Remove(path)
		return false
	}
	return true
}

// Invalidate removes the entry under key unconditionally. Used after any
// mutation so the next visit runs a full fetch-compare cycle.
func (s *Store) Invalidate(key string) {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}

// ClearAll removes every entry this store owns. Administrative escape hatch,
// also invoked on sign-out so the next account does not see the previous
// account's data.
func (s *Store) ClearAll() {
	matches, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		s.log.Warn("cache clear failed", zap.Error(err))
		return
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			s.log.Warn("cache clear failed", zap.String("path", path), zap.Error(err))
		}
	}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, filePrefix+key+fileSuffix)
}

// isFresh is the staleness judgment: an entry is usable while its age is
// strictly below maxAge.
func isFresh(storedAt time.Time, maxAge time.Duration, now time.Time) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(storedAt) < maxAge
}
