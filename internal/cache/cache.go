package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
)

// Store is a file-backed TTL cache. One JSON file per key, so the cache
// survives restarts, individual entries can be expired independently,
// and a crash mid-write damages at most the entry being written. The
// read path treats any unreadable entry as a miss.
type Store struct {
	dir string
	log *logger.Logger
}

type envelope struct {
	Data      json.RawMessage `json:"data"`
	StoredAt  int64           `json:"stored_at"`
	TTLMillis int64           `json:"ttl_millis"`
	ExpiresAt int64           `json:"expires_at"`
}

type Stats struct {
	TotalEntries   int   `json:"total_entries"`
	ValidEntries   int   `json:"valid_entries"`
	ExpiredEntries int   `json:"expired_entries"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9-_]`)

func New(dir string, baseLog *logger.Logger) (*Store, error) {
	storeLog := baseLog.With("component", "CacheStore")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		storeLog.Error("Failed to create cache directory", "dir", dir, "error", err)
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Store{dir: dir, log: storeLog}, nil
}

func (s *Store) filePath(key string) string {
	safeKey := unsafeKeyChars.ReplaceAllString(key, "_")
	return filepath.Join(s.dir, safeKey+".json")
}

// Set stores value under key with the given TTL, overwriting any prior
// entry. I/O failures are logged and swallowed: a value that failed to
// cache is simply recomputed on the next lookup.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Error("Failed to encode cache value", "key", key, "error", err)
		return
	}
	now := time.Now()
	env := envelope{
		Data:      raw,
		StoredAt:  now.UnixMilli(),
		TTLMillis: ttl.Milliseconds(),
		ExpiresAt: now.Add(ttl).UnixMilli(),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		s.log.Error("Failed to encode cache envelope", "key", key, "error", err)
		return
	}
	if err := os.WriteFile(s.filePath(key), payload, 0o644); err != nil {
		s.log.Error("Failed to write cache entry", "key", key, "error", err)
		return
	}
	s.log.Debug("Cached entry", "key", key, "ttl", ttl.String())
}

// Get decodes the entry for key into out and reports whether a valid
// entry was found. Absent, corrupt and expired entries are all misses;
// an expired entry is deleted on read.
func (s *Store) Get(key string, out interface{}) bool {
	raw, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Error("Failed to read cache entry", "key", key, "error", err)
		}
		return false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.log.Warn("Corrupt cache entry, treating as miss", "key", key, "error", err)
		return false
	}
	if time.Now().UnixMilli() > env.ExpiresAt {
		s.log.Debug("Cache entry expired", "key", key)
		s.Delete(key)
		return false
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		s.log.Warn("Failed to decode cache payload, treating as miss", "key", key, "error", err)
		return false
	}
	s.log.Debug("Cache hit", "key", key)
	return true
}

// Delete removes the entry for key. Absence is not an error.
func (s *Store) Delete(key string) {
	if err := os.Remove(s.filePath(key)); err != nil && !os.IsNotExist(err) {
		s.log.Error("Failed to delete cache entry", "key", key, "error", err)
	}
}

// Clear removes every entry in the store's directory.
func (s *Store) Clear() {
	files, err := s.listEntries()
	if err != nil {
		s.log.Error("Failed to list cache entries", "error", err)
		return
	}
	removed := 0
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			s.log.Error("Failed to remove cache entry", "file", f, "error", err)
			continue
		}
		removed++
	}
	s.log.Info("Cleared cache", "removed", removed)
}

// Cleanup scans all entries and deletes the ones whose expiry has
// passed. Safe to run concurrently with Get/Set: a racing read between
// the expiry check and the delete just recomputes on its next miss.
func (s *Store) Cleanup() int {
	files, err := s.listEntries()
	if err != nil {
		s.log.Error("Failed to list cache entries", "error", err)
		return 0
	}
	now := time.Now().UnixMilli()
	cleaned := 0
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			if !os.IsNotExist(err) {
				s.log.Error("Failed to read cache entry during cleanup", "file", f, "error", err)
			}
			continue
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.log.Warn("Skipping unparsable cache entry during cleanup", "file", f, "error", err)
			continue
		}
		if now > env.ExpiresAt {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				s.log.Error("Failed to remove expired cache entry", "file", f, "error", err)
				continue
			}
			cleaned++
		}
	}
	if cleaned > 0 {
		s.log.Info("Cleaned up expired cache entries", "count", cleaned)
	}
	return cleaned
}

// GetStats counts entries by validity. Entries that cannot be parsed are
// counted in the total but in neither the valid nor the expired bucket.
func (s *Store) GetStats() Stats {
	var stats Stats
	files, err := s.listEntries()
	if err != nil {
		s.log.Error("Failed to list cache entries for stats", "error", err)
		return stats
	}
	now := time.Now().UnixMilli()
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		stats.TotalEntries++
		stats.TotalSizeBytes += info.Size()

		raw, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		if now > env.ExpiresAt {
			stats.ExpiredEntries++
		} else {
			stats.ValidEntries++
		}
	}
	return stats
}

func (s *Store) listEntries() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(s.dir, e.Name()))
	}
	return files, nil
}
