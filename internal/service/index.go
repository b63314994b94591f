package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/campuskit/virtualta/internal/domain"
	"github.com/campuskit/virtualta/internal/pagination"
	"github.com/campuskit/virtualta/internal/telemetry"
	"github.com/google/uuid"
)

// MetaKeyEmbeddingProvider is the index_meta key recording which embedding
// provider version produced the vectors currently stored in the index.
const MetaKeyEmbeddingProvider = "embedding_provider"

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	InsertBatch(ctx context.Context, entries []domain.IndexEntry) (int, error)
	Search(ctx context.Context, embedding []float32, k int) ([]domain.RetrievalResult, error)
	Count(ctx context.Context) (int64, error)
	Truncate(ctx context.Context) error
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
}

// IndexMetaRepositoryInterface defines the repository interface for index-wide metadata
type IndexMetaRepositoryInterface interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// TxRepositories provides transactional repository handles.
type TxRepositories interface {
	Documents() DocumentRepositoryInterface
	Meta() IndexMetaRepositoryInterface
}

// TxRunnerInterface runs a function inside a database transaction.
type TxRunnerInterface interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

type DocumentListItem struct {
	ID        string
	Type      domain.DocumentType
	Title     string
	URL       string
	CreatedAt time.Time
}

type DocumentPageResult struct {
	Items      []*DocumentListItem
	NextCursor string
	HasMore    bool
}

type ListDocumentsInput struct {
	Cursor string
	Limit  int
}

type ListDocumentsOutput struct {
	Items   []*DocumentListItem
	Cursor  string
	HasMore bool
}

// IndexService owns the document index: bulk ingestion, nearest-neighbor
// queries, counting and clearing. Writes are mutually exclusive; reads
// proceed concurrently.
type IndexService struct {
	repo            DocumentRepositoryInterface
	meta            IndexMetaRepositoryInterface
	txRunner        TxRunnerInterface
	embedding       EmbeddingClient
	uuidGen         UUIDGenerator
	providerVersion string

	writeMu sync.Mutex
}

// NewIndexService creates a new IndexService instance
func NewIndexService(
	repo DocumentRepositoryInterface,
	meta IndexMetaRepositoryInterface,
	txRunner TxRunnerInterface,
	embedding EmbeddingClient,
	providerVersion string,
) *IndexService {
	return &IndexService{
		repo:            repo,
		meta:            meta,
		txRunner:        txRunner,
		embedding:       embedding,
		uuidGen:         &DefaultUUIDGenerator{},
		providerVersion: providerVersion,
	}
}

// NewIndexServiceWithUUIDGen creates a new IndexService with a custom UUID generator (for testing)
func NewIndexServiceWithUUIDGen(
	repo DocumentRepositoryInterface,
	meta IndexMetaRepositoryInterface,
	txRunner TxRunnerInterface,
	embedding EmbeddingClient,
	providerVersion string,
	uuidGen UUIDGenerator,
) *IndexService {
	svc := NewIndexService(repo, meta, txRunner, embedding, providerVersion)
	svc.uuidGen = uuidGen
	return svc
}

// Ingest embeds and inserts the given documents. Documents with empty or
// whitespace-only content are dropped; a failed embedding skips that one
// document and the batch continues. Only storage failures abort the batch.
// Returns the number of documents inserted.
func (s *IndexService) Ingest(ctx context.Context, docs []domain.Document) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "IndexService.Ingest", telemetry.SpanAttributes{
		Operation: "ingest",
	})
	defer span.End()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}

	stored, err := s.meta.Get(ctx, MetaKeyEmbeddingProvider)
	if err != nil && !errors.Is(err, domain.ErrMetaKeyNotFound) {
		return 0, err
	}
	if stored != "" && stored != s.providerVersion && count > 0 {
		return 0, domain.ErrEmbeddingVersionMismatch
	}

	now := time.Now().UTC()
	entries := make([]domain.IndexEntry, 0, len(docs))
	for _, doc := range docs {
		if !doc.HasContent() {
			log.Printf("ingest: skipping document %q: empty content", doc.ID)
			continue
		}
		if doc.ID == "" {
			doc.ID = s.uuidGen.NewString()
		}
		if err := domain.ValidateDocument(&doc); err != nil {
			log.Printf("ingest: skipping document %q: %v", doc.ID, err)
			continue
		}

		embedding, err := s.embedding.GenerateEmbedding(ctx, doc.Content)
		if err != nil {
			log.Printf("ingest: skipping document %q: embedding failed: %v", doc.ID, err)
			telemetry.CaptureError(ctx, err)
			continue
		}

		entries = append(entries, domain.IndexEntry{
			Document:  doc,
			Embedding: embedding,
			CreatedAt: now,
		})
	}

	if len(entries) == 0 {
		log.Printf("ingest: no valid documents to insert (received %d)", len(docs))
		return 0, nil
	}

	// Insert and tag in one transaction: documents must never persist
	// without the provider tag, or the next startup would report a
	// populated index that every query sees as empty.
	var inserted int
	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		n, err := repos.Documents().InsertBatch(ctx, entries)
		if err != nil {
			return err
		}
		inserted = n
		return repos.Meta().Set(ctx, MetaKeyEmbeddingProvider, s.providerVersion)
	})
	if err != nil {
		return 0, err
	}

	log.Printf("ingest: inserted %d documents (%d skipped)", inserted, len(docs)-inserted)
	return inserted, nil
}

// Query returns the k nearest documents for the question, nearest first.
// Read-side failures (embedding backend, index unreachable) degrade to an
// empty result so answer generation can still proceed. A provider-version
// mismatch is the one hard error: serving results from a different
// embedding space would be silently wrong.
func (s *IndexService) Query(ctx context.Context, question string, k int) ([]domain.RetrievalResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "IndexService.Query", telemetry.SpanAttributes{
		Operation: "query",
	})
	defer span.End()

	stored, err := s.meta.Get(ctx, MetaKeyEmbeddingProvider)
	if err != nil {
		if errors.Is(err, domain.ErrMetaKeyNotFound) {
			// Nothing has ever been ingested.
			return []domain.RetrievalResult{}, nil
		}
		log.Printf("query: index metadata unavailable: %v", err)
		return []domain.RetrievalResult{}, nil
	}
	if stored != s.providerVersion {
		return nil, domain.ErrEmbeddingVersionMismatch
	}

	embedding, err := s.embedding.GenerateEmbedding(ctx, question)
	if err != nil {
		log.Printf("query: embedding failed: %v", err)
		telemetry.CaptureError(ctx, err)
		return []domain.RetrievalResult{}, nil
	}

	results, err := s.repo.Search(ctx, embedding, k)
	if err != nil {
		log.Printf("query: search failed: %v", err)
		telemetry.CaptureError(ctx, err)
		return []domain.RetrievalResult{}, nil
	}

	return results, nil
}

// Count returns the current number of indexed documents.
func (s *IndexService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Clear atomically drops all documents and the provider version tag, so a
// fresh ingestion can never mix with stale vectors.
func (s *IndexService) Clear(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "IndexService.Clear", telemetry.SpanAttributes{
		Operation: "clear",
	})
	defer span.End()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Documents().Truncate(ctx); err != nil {
			return err
		}
		return repos.Meta().Delete(ctx, MetaKeyEmbeddingProvider)
	})
}

// ListDocuments pages through indexed documents for operational inspection.
func (s *IndexService) ListDocuments(ctx context.Context, input ListDocumentsInput) (*ListDocumentsOutput, error) {
	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	result, err := s.repo.ListWithCursor(ctx, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListDocumentsOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}
