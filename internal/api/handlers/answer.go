package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/campuskit/virtualta/internal/api"
	"github.com/campuskit/virtualta/internal/domain"
	"github.com/campuskit/virtualta/internal/service"
)

// AnswerGenerator produces a structured answer for a student question.
type AnswerGenerator interface {
	Generate(ctx context.Context, question string, imageBase64 string) *service.AnswerResult
}

// ReadinessReporter reports whether the index is ready to serve answers.
type ReadinessReporter interface {
	DataLoaded() bool
}

type AnswerHandler struct {
	svc       AnswerGenerator
	readiness ReadinessReporter
}

func NewAnswerHandler(svc AnswerGenerator, readiness ReadinessReporter) *AnswerHandler {
	return &AnswerHandler{svc: svc, readiness: readiness}
}

type QuestionRequest struct {
	Question string `json:"question"`
	Image    string `json:"image,omitempty"`
}

type AnswerResponse struct {
	Answer string        `json:"answer"`
	Links  []domain.Link `json:"links"`
}

// Answer handles POST /api/. The pipeline itself never fails; the only
// error statuses are bad input and an index that has not finished loading.
func (h *AnswerHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	if !h.readiness.DataLoaded() {
		api.Error(w, http.StatusServiceUnavailable, "knowledge base not initialized")
		return
	}

	result := h.svc.Generate(r.Context(), req.Question, req.Image)

	links := result.Links
	if links == nil {
		links = []domain.Link{}
	}

	api.JSON(w, http.StatusOK, AnswerResponse{
		Answer: result.Answer,
		Links:  links,
	})
}
