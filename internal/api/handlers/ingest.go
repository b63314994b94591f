package handlers

import (
	"errors"
	"net/http"

	"github.com/campuskit/virtualta/internal/api"
	"github.com/campuskit/virtualta/internal/domain"
)

// IngestTrigger enqueues a background reingestion.
type IngestTrigger interface {
	Trigger(clearFirst bool) error
}

type IngestHandler struct {
	runner IngestTrigger
}

func NewIngestHandler(runner IngestTrigger) *IngestHandler {
	return &IngestHandler{runner: runner}
}

type ScrapeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ScrapeData handles POST /api/scrape-data. The work happens in the
// background; the response only acknowledges the trigger.
func (h *IngestHandler) ScrapeData(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.Trigger(true); err != nil {
		if errors.Is(err, domain.ErrIngestionInProgress) {
			api.Error(w, http.StatusConflict, "ingestion already in progress")
			return
		}
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusAccepted, ScrapeResponse{
		Status:  "started",
		Message: "Data scraping started in background",
	})
}
