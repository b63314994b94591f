package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/campuskit/virtualta/internal/api"
	"github.com/campuskit/virtualta/internal/domain"
	"github.com/campuskit/virtualta/internal/jobs"
)

// IndexInfo exposes read-only index statistics.
type IndexInfo interface {
	Count(ctx context.Context) (int64, error)
}

// IngestStateReporter exposes the ingestion lifecycle for status reporting.
type IngestStateReporter interface {
	Status() (jobs.State, error)
	DataLoaded() bool
}

// StatusCheckService persists auxiliary status check records.
type StatusCheckService interface {
	Create(ctx context.Context, clientName string) (*domain.StatusCheck, error)
	List(ctx context.Context, limit int) ([]*domain.StatusCheck, error)
}

type StatusHandler struct {
	index            IndexInfo
	ingest           IngestStateReporter
	statusChecks     StatusCheckService
	openaiConfigured bool
}

func NewStatusHandler(index IndexInfo, ingest IngestStateReporter, statusChecks StatusCheckService, openaiConfigured bool) *StatusHandler {
	return &StatusHandler{
		index:            index,
		ingest:           ingest,
		statusChecks:     statusChecks,
		openaiConfigured: openaiConfigured,
	}
}

type StatusResponse struct {
	Status           string `json:"status"`
	DataLoaded       bool   `json:"data_loaded"`
	State            string `json:"state"`
	TotalDocuments   int64  `json:"total_documents"`
	OpenAIConfigured bool   `json:"openai_configured"`
	LastError        string `json:"last_error,omitempty"`
}

// Root handles GET /api/.
func (h *StatusHandler) Root(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]string{"message": "Virtual TA API is running"})
}

// Status handles GET /api/status.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	state, lastErr := h.ingest.Status()

	count, err := h.index.Count(r.Context())
	if err != nil {
		// Status must stay available even when the index is unreachable.
		count = 0
	}

	resp := StatusResponse{
		Status:           "running",
		DataLoaded:       h.ingest.DataLoaded(),
		State:            string(state),
		TotalDocuments:   count,
		OpenAIConfigured: h.openaiConfigured,
	}
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}

	api.JSON(w, http.StatusOK, resp)
}

type CreateStatusCheckRequest struct {
	ClientName string `json:"client_name"`
}

type StatusCheckResponse struct {
	ID         string `json:"id"`
	ClientName string `json:"client_name"`
	CreatedAt  string `json:"created_at"`
}

func statusCheckToResponse(s *domain.StatusCheck) *StatusCheckResponse {
	return &StatusCheckResponse{
		ID:         s.ID,
		ClientName: s.ClientName,
		CreatedAt:  s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateStatusCheck handles POST /api/status-checks.
func (h *StatusHandler) CreateStatusCheck(w http.ResponseWriter, r *http.Request) {
	var req CreateStatusCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ClientName == "" {
		api.Error(w, http.StatusBadRequest, "client_name is required")
		return
	}

	check, err := h.statusChecks.Create(r.Context(), req.ClientName)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, statusCheckToResponse(check))
}

// ListStatusChecks handles GET /api/status-checks.
func (h *StatusHandler) ListStatusChecks(w http.ResponseWriter, r *http.Request) {
	checks, err := h.statusChecks.List(r.Context(), 0)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*StatusCheckResponse, 0, len(checks))
	for _, c := range checks {
		resp = append(resp, statusCheckToResponse(c))
	}

	api.JSON(w, http.StatusOK, resp)
}
