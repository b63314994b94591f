// Package source provides document sources feeding the index: scraper
// snapshot files and a built-in sample set used when no snapshot exists.
package source

import (
	"context"

	"github.com/campuskit/virtualta/internal/domain"
)

// Source yields documents for ingestion.
type Source interface {
	Fetch(ctx context.Context) ([]domain.Document, error)
}
