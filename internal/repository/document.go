package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parchlabs/clauseguard/internal/domain"
	"github.com/parchlabs/clauseguard/internal/pagination"
	"github.com/parchlabs/clauseguard/internal/service"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	riskJSON, err := marshalRiskSummary(doc.RiskSummary)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO documents (id, title, industry, file_path, status, risk_summary, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		doc.ID, doc.Title, doc.Industry, doc.FilePath, doc.Status, riskJSON, doc.CreatedAt, doc.UpdatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, title, industry, file_path, status, risk_summary, created_at, updated_at
		 FROM documents WHERE id = $1`,
		id,
	)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, industry, file_path, status, risk_summary, created_at, updated_at
		 FROM documents
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListWithCursor returns one page of documents, newest first. The cursor is
// keyed on (created_at, id) so inserts during paging never shift the window.
func (r *DocumentRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.DocumentPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, title, industry, file_path, status, risk_summary, created_at, updated_at
			 FROM documents
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, title, industry, file_path, status, risk_summary, created_at, updated_at
			 FROM documents
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(docs) > limit
	if hasMore {
		docs = docs[:limit]
	}

	result := &service.DocumentPageResult{
		Items:   docs,
		HasMore: hasMore,
	}
	if hasMore {
		last := docs[len(docs)-1]
		result.NextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}
	return result, nil
}

// SetStatus moves a document between lifecycle states.
func (r *DocumentRepository) SetStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// SetReviewed stores the merged findings and flips the document to reviewed
// in one statement, so readers never observe findings under a stale status.
// A reviewed document always carries an array, even with zero findings; only
// unreviewed documents hold a null summary.
func (r *DocumentRepository) SetReviewed(ctx context.Context, id string, risks []domain.RiskItem) error {
	if risks == nil {
		risks = []domain.RiskItem{}
	}
	riskJSON, err := marshalRiskSummary(risks)
	if err != nil {
		return err
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, risk_summary = $2, updated_at = $3 WHERE id = $4`,
		domain.DocumentStatusReviewed, riskJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// marshalRiskSummary maps a nil summary to a SQL NULL; documents stay null
// until the pipeline reviews them.
func marshalRiskSummary(risks []domain.RiskItem) ([]byte, error) {
	if risks == nil {
		return nil, nil
	}
	data, err := json.Marshal(risks)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal risk summary: %w", err)
	}
	return data, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var industry pgtype.Text
	var riskJSON []byte
	err := row.Scan(&doc.ID, &doc.Title, &industry, &doc.FilePath, &doc.Status, &riskJSON, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if industry.Valid {
		doc.Industry = industry.String
	}
	if len(riskJSON) > 0 {
		if err := json.Unmarshal(riskJSON, &doc.RiskSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal risk summary: %w", err)
		}
	}
	return &doc, nil
}
