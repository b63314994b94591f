package repository

import (
	"context"
	"time"

	"github.com/campuskit/virtualta/internal/domain"
	"github.com/campuskit/virtualta/internal/pagination"
	"github.com/campuskit/virtualta/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// DocumentRepository handles persistence of documents and their embeddings.
type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

// InsertBatch inserts entries in order. Rows keep their insertion sequence
// through the seq column, which later breaks distance ties in Search.
func (r *DocumentRepository) InsertBatch(ctx context.Context, entries []domain.IndexEntry) (int, error) {
	inserted := 0
	for _, e := range entries {
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		d := e.Document
		_, err := r.db.Exec(ctx,
			`INSERT INTO documents
				(id, type, title, content, url, author, topic_id, post_number, section_type, scraped_at, embedding, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			d.ID,
			d.Type,
			d.Title,
			d.Content,
			d.URL,
			d.Author,
			d.TopicID,
			d.PostNumber,
			d.SectionType,
			d.ScrapedAt,
			pgvector.NewVector(e.Embedding),
			createdAt,
		)
		if err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// Search returns the k nearest documents by cosine distance, nearest first.
// Ties rank by insertion order.
func (r *DocumentRepository) Search(ctx context.Context, embedding []float32, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		k = 5
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, type, title, content, url, (embedding <=> $1) AS distance
		 FROM documents
		 ORDER BY distance ASC, seq ASC
		 LIMIT $2`,
		pgvector.NewVector(embedding), k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.RetrievalResult, 0, k)
	for rows.Next() {
		var res domain.RetrievalResult
		var docType string
		if err := rows.Scan(&res.ID, &docType, &res.Title, &res.Content, &res.URL, &res.Distance); err != nil {
			return nil, err
		}
		res.Type = domain.DocumentType(docType)
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *DocumentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// Truncate drops all documents and resets the insertion sequence.
func (r *DocumentRepository) Truncate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `TRUNCATE documents RESTART IDENTITY`)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	var docType string
	err := r.db.QueryRow(ctx,
		`SELECT id, type, title, content, url, author, topic_id, post_number, section_type, scraped_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &docType, &d.Title, &d.Content, &d.URL, &d.Author, &d.TopicID, &d.PostNumber, &d.SectionType, &d.ScrapedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	d.Type = domain.DocumentType(docType)
	return &d, nil
}

// ListWithCursor pages through documents, newest first.
func (r *DocumentRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.DocumentPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, type, title, url, created_at
			 FROM documents
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, type, title, url, created_at
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

	var items []*service.DocumentListItem
	for rows.Next() {
		var item service.DocumentListItem
		var docType string
		if err := rows.Scan(&item.ID, &docType, &item.Title, &item.URL, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Type = domain.DocumentType(docType)
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.DocumentPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
