package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/campuskit/virtualta/internal/domain"
)

// snapshotDocument mirrors one entry of the scraper's JSON snapshot. The
// scraper emits a flat array; discourse fields are absent on course content
// and vice versa, so everything beyond the base fields is optional.
type snapshotDocument struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	URL         string          `json:"url"`
	ScrapedAt   string          `json:"scraped_at"`
	Author      string          `json:"author"`
	TopicID     json.RawMessage `json:"topic_id"`
	PostNumber  json.RawMessage `json:"post_number"`
	SectionType string          `json:"section_type"`
}

// FileSource loads documents from a scraper snapshot JSON file.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource reading from the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the snapshot file path.
func (s *FileSource) Path() string {
	return s.path
}

// Fetch reads and parses the snapshot file. Missing optional fields become
// empty strings; an unknown type is preserved so ingestion can reject it.
func (s *FileSource) Fetch(ctx context.Context) ([]domain.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", s.path, err)
	}
	return ParseSnapshot(data)
}

// ParseSnapshot decodes a snapshot JSON payload into documents.
func ParseSnapshot(data []byte) ([]domain.Document, error) {
	var raw []snapshotDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	docs := make([]domain.Document, 0, len(raw))
	for _, r := range raw {
		docs = append(docs, domain.Document{
			ID:          r.ID,
			Type:        domain.DocumentType(r.Type),
			Title:       r.Title,
			Content:     r.Content,
			URL:         r.URL,
			ScrapedAt:   r.ScrapedAt,
			Author:      r.Author,
			TopicID:     rawNumberToString(r.TopicID),
			PostNumber:  rawNumberToString(r.PostNumber),
			SectionType: r.SectionType,
		})
	}
	return docs, nil
}

// rawNumberToString normalizes a snapshot field that the scraper emits as
// either a JSON number or a string.
func rawNumberToString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatInt(n, 10)
	}

	return string(raw)
}
