package store

import (
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func setupPg(t *testing.T) *PgStore {
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL is not set; skipping integration tests")
	}
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s, err := NewPgStore(db, logrus.New())
	if err != nil {
		t.Fatalf("init pg store: %v", err)
	}
	return s
}

func TestPgStore_RoundTrip(t *testing.T) {
	s := setupPg(t)
	key := "test-kv-roundtrip"
	_ = s.Remove(key)

	if _, ok, err := s.Get(key); err != nil || ok {
		t.Fatalf("expected absent key, ok=%v err=%v", ok, err)
	}

	if err := s.Set(key, "one"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if v, ok, _ := s.Get(key); !ok || v != "one" {
		t.Fatalf("expected one, got %q ok=%v", v, ok)
	}

	// upsert overwrites
	if err := s.Set(key, "two"); err != nil {
		t.Fatalf("second set failed: %v", err)
	}
	if v, _, _ := s.Get(key); v != "two" {
		t.Fatalf("expected two, got %q", v)
	}

	if err := s.Remove(key); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, ok, _ := s.Get(key); ok {
		t.Fatal("expected key gone after remove")
	}
}
