package source

import (
	"context"
	"time"

	"github.com/campuskit/virtualta/internal/domain"
)

// SampleSource provides a small built-in document set so the service can
// answer questions before a real snapshot has been scraped.
type SampleSource struct{}

// NewSampleSource creates a SampleSource.
func NewSampleSource() *SampleSource {
	return &SampleSource{}
}

// Fetch returns the built-in sample documents.
func (s *SampleSource) Fetch(ctx context.Context) ([]domain.Document, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	return []domain.Document{
		{
			ID:          "sample_course_1",
			Type:        domain.DocumentTypeCourseContent,
			Title:       "Introduction to Tools in Data Science",
			Content:     "Tools in Data Science covers various computational tools and libraries used in data analysis, machine learning, and statistical computing. Key topics include Python libraries like pandas, numpy, scikit-learn, and matplotlib.",
			URL:         "https://tds.s-anand.net/#/2025-01/",
			SectionType: "h2",
			ScrapedAt:   now,
		},
		{
			ID:         "sample_discourse_1",
			Type:       domain.DocumentTypeDiscoursePost,
			Title:      "Question about GPT models in assignments",
			Content:    "Should I use gpt-4o-mini which AI proxy supports, or gpt3.5 turbo? For the assignment, I need to know which model to use for token counting and pricing calculations.",
			URL:        "https://discourse.onlinedegree.iitm.ac.in/t/ga5-question-8-clarification/155939/4",
			Author:     "student123",
			TopicID:    "155939",
			PostNumber: "4",
			ScrapedAt:  now,
		},
		{
			ID:         "sample_discourse_2",
			Type:       domain.DocumentTypeDiscoursePost,
			Title:      "GA5 Question 8 Clarification",
			Content:    "You must use gpt-3.5-turbo-0125, even if the AI Proxy only supports gpt-4o-mini. Use the OpenAI API directly for this question. My understanding is that you just have to use a tokenizer, similar to what Prof. Anand used, to get the number of tokens and multiply that by the given rate.",
			URL:        "https://discourse.onlinedegree.iitm.ac.in/t/ga5-question-8-clarification/155939/3",
			Author:     "ta_helper",
			TopicID:    "155939",
			PostNumber: "3",
			ScrapedAt:  now,
		},
	}, nil
}

// FallbackSource tries a primary source and falls back to a secondary one
// when the primary fails or yields nothing.
type FallbackSource struct {
	primary  Source
	fallback Source
}

// NewFallbackSource creates a FallbackSource.
func NewFallbackSource(primary, fallback Source) *FallbackSource {
	return &FallbackSource{primary: primary, fallback: fallback}
}

// Fetch returns the primary source's documents, or the fallback's when the
// primary errors or is empty.
func (s *FallbackSource) Fetch(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.primary.Fetch(ctx)
	if err == nil && len(docs) > 0 {
		return docs, nil
	}
	return s.fallback.Fetch(ctx)
}
