package domain

import (
	"fmt"
	"strings"
	"time"
)

// DocumentType discriminates the document variants the scraper produces.
type DocumentType string

const (
	DocumentTypeCourseContent DocumentType = "course_content"
	DocumentTypeDiscoursePost DocumentType = "discourse_post"
	DocumentTypeOther         DocumentType = "other"
)

// Document is the unit of retrievable knowledge. The base fields are shared
// by every variant; the optional fields below are populated depending on
// Type and stored as strings in the index.
type Document struct {
	ID        string
	Type      DocumentType
	Title     string
	Content   string
	URL       string
	ScrapedAt string

	// discourse_post fields
	Author     string
	TopicID    string
	PostNumber string

	// course_content fields
	SectionType string
}

// IndexEntry pairs a document with its computed embedding. The embedding is
// derived from Content and regenerable; it lives alongside the document in
// the index but is kept separate here because it is produced at ingestion.
type IndexEntry struct {
	Document  Document
	Embedding []float32
	CreatedAt time.Time
}

// RetrievalResult is one scored hit from a nearest-neighbor query.
// Ephemeral: produced per query, never persisted.
type RetrievalResult struct {
	ID       string
	Type     DocumentType
	Title    string
	Content  string
	URL      string
	Distance float64
}

// Link is a citation surfaced to the caller, derived from retrieval results.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// HasContent reports whether the document carries non-whitespace content.
// Empty-content documents are dropped at ingestion.
func (d *Document) HasContent() bool {
	return strings.TrimSpace(d.Content) != ""
}

// ValidateDocument checks a document against its variant's schema.
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if !d.HasContent() {
		return ErrEmptyContent
	}

	switch d.Type {
	case DocumentTypeCourseContent:
		if d.Author != "" || d.TopicID != "" || d.PostNumber != "" {
			return fmt.Errorf("course_content document %s carries discourse fields", d.ID)
		}
	case DocumentTypeDiscoursePost:
		if d.SectionType != "" {
			return fmt.Errorf("discourse_post document %s carries a section type", d.ID)
		}
	case DocumentTypeOther:
		// No variant-specific fields.
	default:
		return fmt.Errorf("document Type is invalid: %s", d.Type)
	}

	return nil
}

// IsValidDocumentType checks if t is one of the known variants.
func IsValidDocumentType(t DocumentType) bool {
	switch t {
	case DocumentTypeCourseContent, DocumentTypeDiscoursePost, DocumentTypeOther:
		return true
	}
	return false
}
