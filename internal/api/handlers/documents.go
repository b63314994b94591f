package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/campuskit/virtualta/internal/api"
	"github.com/campuskit/virtualta/internal/service"
)

// DocumentLister pages through indexed documents.
type DocumentLister interface {
	ListDocuments(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error)
}

type DocumentsHandler struct {
	svc DocumentLister
}

func NewDocumentsHandler(svc DocumentLister) *DocumentsHandler {
	return &DocumentsHandler{svc: svc}
}

type DocumentListItemResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

type DocumentListResponse struct {
	Items   []*DocumentListItemResponse `json:"items"`
	Cursor  string                      `json:"cursor,omitempty"`
	HasMore bool                        `json:"has_more"`
}

// List handles GET /api/documents with cursor pagination.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			api.Error(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	out, err := h.svc.ListDocuments(r.Context(), service.ListDocumentsInput{
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*DocumentListItemResponse, 0, len(out.Items))
	for _, item := range out.Items {
		items = append(items, &DocumentListItemResponse{
			ID:        item.ID,
			Type:      string(item.Type),
			Title:     item.Title,
			URL:       item.URL,
			CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	api.JSON(w, http.StatusOK, DocumentListResponse{
		Items:   items,
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	})
}
