package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campuskit/virtualta/internal/api/handlers"
	"github.com/campuskit/virtualta/internal/domain"
	"github.com/campuskit/virtualta/internal/jobs"
	"github.com/campuskit/virtualta/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnswerer struct{}

func (stubAnswerer) Generate(ctx context.Context, question, imageBase64 string) *service.AnswerResult {
	return &service.AnswerResult{Answer: "stub answer", Links: []domain.Link{}}
}

type stubReadiness struct{ ready bool }

func (s stubReadiness) DataLoaded() bool { return s.ready }

type stubIndexInfo struct{ count int64 }

func (s stubIndexInfo) Count(ctx context.Context) (int64, error) { return s.count, nil }

type stubIngestState struct{}

func (stubIngestState) Status() (jobs.State, error) { return jobs.StateReady, nil }
func (stubIngestState) DataLoaded() bool            { return true }

type stubStatusChecks struct{}

func (stubStatusChecks) Create(ctx context.Context, clientName string) (*domain.StatusCheck, error) {
	return &domain.StatusCheck{ID: "id", ClientName: clientName}, nil
}

func (stubStatusChecks) List(ctx context.Context, limit int) ([]*domain.StatusCheck, error) {
	return []*domain.StatusCheck{}, nil
}

type stubTrigger struct{}

func (stubTrigger) Trigger(clearFirst bool) error { return nil }

type stubLister struct{}

func (stubLister) ListDocuments(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error) {
	return &service.ListDocumentsOutput{Items: []*service.DocumentListItem{}}, nil
}

func newTestRouter(adminToken string) http.Handler {
	return NewRouter(RouterConfig{
		AdminToken:       adminToken,
		AnswerHandler:    handlers.NewAnswerHandler(stubAnswerer{}, stubReadiness{ready: true}),
		StatusHandler:    handlers.NewStatusHandler(stubIndexInfo{count: 1}, stubIngestState{}, stubStatusChecks{}, true),
		IngestHandler:    handlers.NewIngestHandler(stubTrigger{}),
		DocumentsHandler: handlers.NewDocumentsHandler(stubLister{}),
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter("")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter("")

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/", "", http.StatusOK},
		{http.MethodPost, "/api/", `{"question":"q"}`, http.StatusOK},
		{http.MethodGet, "/api/status", "", http.StatusOK},
		{http.MethodPost, "/api/status-checks", `{"client_name":"c"}`, http.StatusCreated},
		{http.MethodGet, "/api/status-checks", "", http.StatusOK},
		{http.MethodPost, "/api/scrape-data", "", http.StatusAccepted},
		{http.MethodGet, "/api/documents", "", http.StatusOK},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	router := newTestRouter("secret")

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/scrape-data"},
		{http.MethodGet, "/api/documents"},
	} {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s without token", tt.method, tt.path)

		req = httptest.NewRequest(tt.method, tt.path, nil)
		req.Header.Set("Authorization", "Bearer secret")
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.NotEqual(t, http.StatusUnauthorized, rec.Code, "%s %s with token", tt.method, tt.path)
	}
}

func TestRouter_PublicRoutesSkipAdminGuard(t *testing.T) {
	router := newTestRouter("secret")

	req := httptest.NewRequest(http.MethodPost, "/api/", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router := newTestRouter("")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
