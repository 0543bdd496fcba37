package postgres

import (
	"strings"
	"testing"
)

func TestSerializeEmbedding(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want string
	}{
		{"empty", nil, "[]"},
		{"single", []float32{1}, "[1]"},
		{"fractions", []float32{0.5, -0.25, 3}, "[0.5,-0.25,3]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serializeEmbedding(tt.in); got != tt.want {
				t.Errorf("serializeEmbedding(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHashLockName(t *testing.T) {
	a := hashLockName("ingest:https://example.com/a.pdf")
	b := hashLockName("ingest:https://example.com/b.pdf")

	if a != hashLockName("ingest:https://example.com/a.pdf") {
		t.Error("expected hash to be stable")
	}
	if a == b {
		t.Error("expected different names to hash differently")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("postgres://localhost/papers?sslmode=disable")

	if cfg.URL != "postgres://localhost/papers?sslmode=disable" {
		t.Errorf("unexpected url %s", cfg.URL)
	}
	if cfg.MaxOpenConns <= cfg.MaxIdleConns {
		t.Errorf("expected more open than idle connections, got %d/%d", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
}

func TestSchema_Embedded(t *testing.T) {
	for _, table := range []string{"papers", "qa_records", "paper_segments", "tasks"} {
		if !strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("schema missing table %s", table)
		}
	}
	if !strings.Contains(schema, "CREATE EXTENSION IF NOT EXISTS vector") {
		t.Error("schema missing pgvector extension")
	}
}

