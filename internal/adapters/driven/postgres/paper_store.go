package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PaperStore = (*PaperStore)(nil)

// PaperStore implements driven.PaperStore using PostgreSQL
type PaperStore struct {
	db *DB
}

// NewPaperStore creates a new PaperStore
func NewPaperStore(db *DB) *PaperStore {
	return &PaperStore{db: db}
}

// Save creates or replaces a paper
func (s *PaperStore) Save(ctx context.Context, paper *domain.Paper) error {
	notesJSON, err := json.Marshal(paper.Notes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO papers (url, name, full_text, notes, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (url) DO UPDATE SET
			name = EXCLUDED.name,
			full_text = EXCLUDED.full_text,
			notes = EXCLUDED.notes,
			created_at = EXCLUDED.created_at
	`

	_, err = s.db.ExecContext(ctx, query,
		paper.URL,
		paper.Name,
		paper.FullText,
		notesJSON,
		paper.CreatedAt,
	)
	return err
}

// Get retrieves a paper by URL
func (s *PaperStore) Get(ctx context.Context, url string) (*domain.Paper, error) {
	query := `
		SELECT url, name, full_text, notes, created_at
		FROM papers
		WHERE url = $1
	`

	var paper domain.Paper
	var notesJSON []byte

	err := s.db.QueryRowContext(ctx, query, url).Scan(
		&paper.URL,
		&paper.Name,
		&paper.FullText,
		&notesJSON,
		&paper.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(notesJSON, &paper.Notes); err != nil {
		return nil, fmt.Errorf("decode notes for %s: %w", url, err)
	}

	return &paper, nil
}
