package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/campuskit/virtualta/internal/domain"
	"github.com/campuskit/virtualta/internal/telemetry"
)

const (
	// DefaultTopK is the number of documents retrieved per question.
	DefaultTopK = 5
	// MaxLinks caps the citation list surfaced to the caller.
	MaxLinks = 5

	linkTextMaxChars     = 100
	fallbackExcerptChars = 500
	contextSeparator     = "--------------------------------------------------"
)

// Fixed answer texts. These are part of the caller-facing contract: the
// pipeline always returns one of a generated answer, a fallback excerpt,
// or one of these messages.
const (
	systemPrompt = `You are a helpful Teaching Assistant for the Tools in Data Science (TDS) course at IIT Madras.
Your role is to answer student questions based on the course content and discussion forum posts provided.

Instructions:
1. Answer questions clearly and directly based on the provided context
2. If the context doesn't contain enough information, say so honestly
3. For technical questions, provide specific guidance when possible
4. Reference the course materials or forum discussions when relevant
5. Be helpful and encouraging, as you would be as a real TA
6. If asked about specific models or tools, refer to the exact requirements mentioned in the course
7. Keep your answers concise but comprehensive

Remember: You are representing the TDS course, so maintain academic standards and provide accurate information based on the course content.`

	userPromptTemplate = `Based on the following course materials and forum discussions, please answer this student question:

QUESTION: %s

RELEVANT COURSE MATERIALS AND DISCUSSIONS:
%s

Please provide a helpful and accurate answer based on the above information.`

	imageNote = "\n\nNote: An image was provided with this question (base64 encoded). Please consider this in your response if relevant."

	fallbackPrefix   = "Based on the course materials I found, here is the most relevant information: "
	noContextAnswer  = "I couldn't find relevant course materials to generate a complete response. Please try rephrasing your question or check the course website directly."
	apologeticAnswer = "I apologize, but I encountered an error while processing your question. Please try again later."
)

// Retriever defines the interface for nearest-neighbor document retrieval
type Retriever interface {
	Query(ctx context.Context, question string, k int) ([]domain.RetrievalResult, error)
}

// ChatClient defines the interface for the language-model backend
type ChatClient interface {
	CreateAnswer(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AnswerResult is the structured output of answer generation.
type AnswerResult struct {
	Answer string
	Links  []domain.Link
}

// AnswerService runs the retrieval-augmented answer pipeline: retrieve,
// assemble context, prompt the model, post-process answer and links.
type AnswerService struct {
	retriever Retriever
	chat      ChatClient
	topK      int
}

// NewAnswerService creates a new AnswerService instance
func NewAnswerService(retriever Retriever, chat ChatClient) *AnswerService {
	return &AnswerService{
		retriever: retriever,
		chat:      chat,
		topK:      DefaultTopK,
	}
}

// Generate answers a student question. It never returns an error: every
// failure mode inside the pipeline resolves to a well-formed result, down
// to a fixed apologetic answer with no links.
func (s *AnswerService) Generate(ctx context.Context, question string, imageBase64 string) (result *AnswerResult) {
	ctx, span := telemetry.StartSpan(ctx, "AnswerService.Generate", telemetry.SpanAttributes{
		Operation: "generate_answer",
	})
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("answer: recovered from panic: %v", r)
			telemetry.CaptureMessage(ctx, fmt.Sprintf("answer pipeline panic: %v", r))
			result = &AnswerResult{Answer: apologeticAnswer, Links: []domain.Link{}}
		}
	}()

	results, err := s.retriever.Query(ctx, question, s.topK)
	if err != nil {
		// Retrieval failure must not abort answer generation.
		log.Printf("answer: retrieval failed: %v", err)
		telemetry.CaptureError(ctx, err)
		results = nil
	}

	contextBlock := AssembleContext(results)
	userPrompt := BuildUserPrompt(question, contextBlock, imageBase64 != "")

	answer, err := s.chat.CreateAnswer(ctx, systemPrompt, userPrompt)
	if err != nil {
		log.Printf("answer: chat backend failed, using fallback: %v", err)
		telemetry.CaptureError(ctx, err)
		answer = fallbackAnswer(results)
	} else {
		answer = strings.TrimSpace(answer)
	}

	return &AnswerResult{
		Answer: answer,
		Links:  ExtractLinks(results),
	}
}

// AssembleContext formats ranked retrieval results into a single context
// block, preserving ranking order and per-item provenance. Empty results
// produce an empty string.
func AssembleContext(results []domain.RetrievalResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, res := range results {
		var b strings.Builder
		sourceType := string(res.Type)
		if sourceType == "" {
			sourceType = "unknown"
		}
		fmt.Fprintf(&b, "Source: %s\n", sourceType)
		if res.Title != "" {
			fmt.Fprintf(&b, "Title: %s\n", res.Title)
		}
		if res.URL != "" {
			fmt.Fprintf(&b, "URL: %s\n", res.URL)
		}
		fmt.Fprintf(&b, "Content: %s\n", res.Content)
		b.WriteString(contextSeparator + "\n")
		parts = append(parts, b.String())
	}

	return strings.Join(parts, "\n")
}

// BuildUserPrompt embeds the question and context block into the fixed user
// instruction template, appending the image note when an image accompanied
// the question.
func BuildUserPrompt(question, contextBlock string, hasImage bool) string {
	prompt := fmt.Sprintf(userPromptTemplate, question, contextBlock)
	if hasImage {
		prompt += imageNote
	}
	return prompt
}

// SystemPrompt returns the fixed system instruction.
func SystemPrompt() string {
	return systemPrompt
}

// fallbackAnswer synthesizes a deterministic answer from the best-ranked
// document when the language-model backend is unavailable.
func fallbackAnswer(results []domain.RetrievalResult) string {
	if len(results) == 0 {
		return noContextAnswer
	}

	return fallbackPrefix + truncateChars(results[0].Content, fallbackExcerptChars)
}

// truncateChars cuts s after limit characters, appending an ellipsis when
// anything was dropped. Counts runes, not bytes, so multi-byte course
// content is never split mid-character.
func truncateChars(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// ExtractLinks derives citation links from retrieval results: ranking order
// preserved, deduplicated by exact url (first occurrence wins), capped at
// MaxLinks. Results without a url never produce a link.
func ExtractLinks(results []domain.RetrievalResult) []domain.Link {
	links := make([]domain.Link, 0, MaxLinks)
	seen := make(map[string]struct{}, len(results))

	for _, res := range results {
		if res.URL == "" {
			continue
		}
		if _, ok := seen[res.URL]; ok {
			continue
		}

		text := res.Title
		if text == "" {
			text = truncateChars(res.Content, linkTextMaxChars)
		}

		links = append(links, domain.Link{URL: res.URL, Text: text})
		seen[res.URL] = struct{}{}

		if len(links) >= MaxLinks {
			break
		}
	}

	return links
}
