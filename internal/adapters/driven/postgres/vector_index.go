package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex implements driven.VectorIndex with pgvector cosine distance
type VectorIndex struct {
	db       *DB
	embedder driven.EmbeddingService
}

// NewVectorIndex creates a new pgvector-backed index
func NewVectorIndex(db *DB, embedder driven.EmbeddingService) *VectorIndex {
	return &VectorIndex{db: db, embedder: embedder}
}

// Index embeds segments and replaces the paper's existing entries
func (v *VectorIndex) Index(ctx context.Context, paperURL string, segments []domain.TextSegment) error {
	if len(segments) == 0 {
		return nil
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Content
	}

	embeddings, err := v.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed segments: %w", err)
	}
	if len(embeddings) != len(segments) {
		return fmt.Errorf("embed segments: got %d embeddings for %d segments", len(embeddings), len(segments))
	}

	return v.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM paper_segments WHERE paper_url = $1`, paperURL); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO paper_segments (paper_url, position, content, metadata, embedding)
			VALUES ($1, $2, $3, $4, $5::vector)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, seg := range segments {
			metadataJSON, err := json.Marshal(seg.Metadata)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, paperURL, i, seg.Content, metadataJSON, serializeEmbedding(embeddings[i])); err != nil {
				return err
			}
		}
		return nil
	})
}

// Search returns the k segments of the paper closest to the query
func (v *VectorIndex) Search(ctx context.Context, paperURL, query string, k int) ([]domain.TextSegment, error) {
	embedding, err := v.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := v.db.QueryContext(ctx, `
		SELECT content, metadata
		FROM paper_segments
		WHERE paper_url = $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3
	`, serializeEmbedding(embedding), paperURL, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []domain.TextSegment
	for rows.Next() {
		var seg domain.TextSegment
		var metadataJSON []byte
		if err := rows.Scan(&seg.Content, &metadataJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metadataJSON, &seg.Metadata); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	return segments, rows.Err()
}

// DeleteByPaper removes every entry for a paper
func (v *VectorIndex) DeleteByPaper(ctx context.Context, paperURL string) error {
	_, err := v.db.ExecContext(ctx, `DELETE FROM paper_segments WHERE paper_url = $1`, paperURL)
	return err
}

// serializeEmbedding formats an embedding as a pgvector literal
func serializeEmbedding(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, f := range embedding {
		parts[i] = strconv.FormatFloat(float64(f), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
