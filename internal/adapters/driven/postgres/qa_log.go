package postgres

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.QALogStore = (*QALogStore)(nil)

// QALogStore implements driven.QALogStore using PostgreSQL
type QALogStore struct {
	db *DB
}

// NewQALogStore creates a new QALogStore
func NewQALogStore(db *DB) *QALogStore {
	return &QALogStore{db: db}
}

// Append inserts a QA record
func (s *QALogStore) Append(ctx context.Context, record *domain.QARecord) error {
	followups := record.FollowupQuestions
	if followups == nil {
		followups = []string{}
	}
	followupsJSON, err := json.Marshal(followups)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO qa_records (id, paper_url, question, answer, context, followup_questions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.PaperURL,
		record.Question,
		record.Answer,
		record.Context,
		followupsJSON,
		record.CreatedAt,
	)
	return err
}

// ListByPaper returns the records for a paper, newest first
func (s *QALogStore) ListByPaper(ctx context.Context, url string, limit int) ([]*domain.QARecord, error) {
	query := `
		SELECT id, paper_url, question, answer, context, followup_questions, created_at
		FROM qa_records
		WHERE paper_url = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, url, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.QARecord
	for rows.Next() {
		var r domain.QARecord
		var followupsJSON []byte
		if err := rows.Scan(
			&r.ID,
			&r.PaperURL,
			&r.Question,
			&r.Answer,
			&r.Context,
			&followupsJSON,
			&r.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(followupsJSON, &r.FollowupQuestions); err != nil {
			return nil, err
		}
		records = append(records, &r)
	}

	return records, rows.Err()
}
