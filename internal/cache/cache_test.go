package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSetGetRoundtrip(t *testing.T) {
	s := newTestStore(t)

	in := map[string]string{"name": "Portal 2"}
	s.Set("app_details_620", in, time.Minute)

	var out map[string]string
	if !s.Get("app_details_620", &out) {
		t.Fatalf("expected cache hit")
	}
	if out["name"] != "Portal 2" {
		t.Fatalf("got %q, want %q", out["name"], "Portal 2")
	}
}

func TestGetMissOnAbsentKey(t *testing.T) {
	s := newTestStore(t)

	var out map[string]string
	if s.Get("nothing_here", &out) {
		t.Fatalf("expected miss for absent key")
	}
}

func TestExpiredEntryIsMissAndLazilyDeleted(t *testing.T) {
	s := newTestStore(t)

	s.Set("short_lived", "value", 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)

	var out string
	if s.Get("short_lived", &out) {
		t.Fatalf("expected miss after TTL elapsed")
	}

	stats := s.GetStats()
	if stats.TotalEntries != 0 {
		t.Fatalf("expected lazy delete to remove the entry, stats=%+v", stats)
	}
}

func TestOverwriteReplacesPriorEntry(t *testing.T) {
	s := newTestStore(t)

	s.Set("key", "first", time.Minute)
	s.Set("key", "second", time.Minute)

	var out string
	if !s.Get("key", &out) {
		t.Fatalf("expected hit")
	}
	if out != "second" {
		t.Fatalf("got %q, want %q", out, "second")
	}
}

func TestKeySanitization(t *testing.T) {
	s := newTestStore(t)

	key := "steam/app:620?lang=en"
	s.Set(key, "value", time.Minute)

	var out string
	if !s.Get(key, &out) || out != "value" {
		t.Fatalf("expected hit for sanitized key, got %q", out)
	}
	if _, err := os.Stat(filepath.Join(s.dir, "steam_app_620_lang_en.json")); err != nil {
		t.Fatalf("expected sanitized file name: %v", err)
	}
}

func TestCorruptEntryIsMiss(t *testing.T) {
	s := newTestStore(t)

	path := filepath.Join(s.dir, "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	var out string
	if s.Get("broken", &out) {
		t.Fatalf("expected miss for corrupt entry")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	s.Set("key", "value", time.Minute)
	s.Delete("key")
	s.Delete("key")

	var out string
	if s.Get("key", &out) {
		t.Fatalf("expected miss after delete")
	}
}

func TestCleanupRemovesOnlyExpired(t *testing.T) {
	s := newTestStore(t)

	s.Set("expired", "old", 50*time.Millisecond)
	s.Set("valid", "fresh", time.Minute)
	time.Sleep(100 * time.Millisecond)

	cleaned := s.Cleanup()
	if cleaned != 1 {
		t.Fatalf("cleaned=%d, want 1", cleaned)
	}

	var out string
	if !s.Get("valid", &out) || out != "fresh" {
		t.Fatalf("valid entry should survive cleanup")
	}
	if s.Get("expired", &out) {
		t.Fatalf("expired entry should be gone")
	}
}

func TestClearRemovesEverything(t *testing.T) {
	s := newTestStore(t)

	s.Set("a", 1, time.Minute)
	s.Set("b", 2, time.Minute)
	s.Clear()

	stats := s.GetStats()
	if stats.TotalEntries != 0 {
		t.Fatalf("expected empty store, stats=%+v", stats)
	}
}

func TestGetStatsCountsBuckets(t *testing.T) {
	s := newTestStore(t)

	s.Set("valid", "v", time.Minute)
	s.Set("expired", "e", 50*time.Millisecond)
	if err := os.WriteFile(filepath.Join(s.dir, "junk.json"), []byte("junk"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	stats := s.GetStats()
	if stats.TotalEntries != 3 {
		t.Fatalf("total=%d, want 3", stats.TotalEntries)
	}
	if stats.ValidEntries != 1 {
		t.Fatalf("valid=%d, want 1", stats.ValidEntries)
	}
	if stats.ExpiredEntries != 1 {
		t.Fatalf("expired=%d, want 1", stats.ExpiredEntries)
	}
	if stats.TotalSizeBytes == 0 {
		t.Fatalf("expected nonzero size")
	}
}
