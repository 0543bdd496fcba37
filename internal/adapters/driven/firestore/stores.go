// Package firestore stores papers and QA records in Cloud Firestore.
package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.PaperStore = (*PaperStore)(nil)
	_ driven.QALogStore = (*QALogStore)(nil)
)

const (
	papersCollection    = "papers"
	qaRecordsCollection = "qa_records"
)

// NewClient creates a Firestore client for the project
func NewClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, errors.New("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}

// paperDoc is the stored form of a paper. Document IDs are derived from
// the URL because URLs contain slashes.
type paperDoc struct {
	URL       string    `firestore:"url"`
	Name      string    `firestore:"name"`
	FullText  string    `firestore:"paper"`
	Notes     []noteDoc `firestore:"notes"`
	CreatedAt time.Time `firestore:"createdAt"`
}

type noteDoc struct {
	Note        string `firestore:"note"`
	PageNumbers []int  `firestore:"pageNumbers"`
}

type qaRecordDoc struct {
	PaperURL          string    `firestore:"paperUrl"`
	Question          string    `firestore:"question"`
	Answer            string    `firestore:"answer"`
	Context           string    `firestore:"context"`
	FollowupQuestions []string  `firestore:"followupQuestions"`
	CreatedAt         time.Time `firestore:"createdAt"`
}

// docID returns the hex SHA-256 of the URL
func docID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func toPaperDoc(p *domain.Paper) paperDoc {
	notes := make([]noteDoc, len(p.Notes))
	for i, n := range p.Notes {
		notes[i] = noteDoc{Note: n.Text, PageNumbers: n.PageNumbers}
	}
	return paperDoc{URL: p.URL, Name: p.Name, FullText: p.FullText, Notes: notes, CreatedAt: p.CreatedAt}
}

func (d paperDoc) toDomain() *domain.Paper {
	notes := make([]domain.Note, len(d.Notes))
	for i, n := range d.Notes {
		notes[i] = domain.Note{Text: n.Note, PageNumbers: n.PageNumbers}
	}
	return &domain.Paper{URL: d.URL, Name: d.Name, FullText: d.FullText, Notes: notes, CreatedAt: d.CreatedAt}
}

func toQARecordDoc(r *domain.QARecord) qaRecordDoc {
	followups := r.FollowupQuestions
	if followups == nil {
		followups = []string{}
	}
	return qaRecordDoc{
		PaperURL:          r.PaperURL,
		Question:          r.Question,
		Answer:            r.Answer,
		Context:           r.Context,
		FollowupQuestions: followups,
		CreatedAt:         r.CreatedAt,
	}
}

func (d qaRecordDoc) toDomain(id string) *domain.QARecord {
	return &domain.QARecord{
		ID:                id,
		PaperURL:          d.PaperURL,
		Question:          d.Question,
		Answer:            d.Answer,
		Context:           d.Context,
		FollowupQuestions: d.FollowupQuestions,
		CreatedAt:         d.CreatedAt,
	}
}

// PaperStore implements driven.PaperStore using Firestore
type PaperStore struct {
	client *firestore.Client
}

// NewPaperStore creates a new PaperStore
func NewPaperStore(client *firestore.Client) *PaperStore {
	return &PaperStore{client: client}
}

// Save creates or replaces a paper
func (s *PaperStore) Save(ctx context.Context, paper *domain.Paper) error {
	_, err := s.client.Collection(papersCollection).Doc(docID(paper.URL)).Set(ctx, toPaperDoc(paper))
	return err
}

// Get retrieves a paper by URL
func (s *PaperStore) Get(ctx context.Context, url string) (*domain.Paper, error) {
	snap, err := s.client.Collection(papersCollection).Doc(docID(url)).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc paperDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode paper %s: %w", url, err)
	}
	return doc.toDomain(), nil
}

// QALogStore implements driven.QALogStore using Firestore
type QALogStore struct {
	client *firestore.Client
}

// NewQALogStore creates a new QALogStore
func NewQALogStore(client *firestore.Client) *QALogStore {
	return &QALogStore{client: client}
}

// Append creates a record document keyed by the record ID
func (s *QALogStore) Append(ctx context.Context, record *domain.QARecord) error {
	_, err := s.client.Collection(qaRecordsCollection).Doc(record.ID).Create(ctx, toQARecordDoc(record))
	return err
}

// ListByPaper returns the records for a paper, newest first
func (s *QALogStore) ListByPaper(ctx context.Context, url string, limit int) ([]*domain.QARecord, error) {
	query := s.client.Collection(qaRecordsCollection).
		Where("paperUrl", "==", url).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var records []*domain.QARecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var doc qaRecordDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode qa record %s: %w", snap.Ref.ID, err)
		}
		records = append(records, doc.toDomain(snap.Ref.ID))
	}
	return records, nil
}
