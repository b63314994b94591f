package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campuskit/virtualta/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockIngestTrigger mocks the reingestion trigger
type MockIngestTrigger struct {
	mock.Mock
}

func (m *MockIngestTrigger) Trigger(clearFirst bool) error {
	args := m.Called(clearFirst)
	return args.Error(0)
}

func TestIngestHandler_ScrapeData_Accepted(t *testing.T) {
	mockRunner := new(MockIngestTrigger)
	handler := NewIngestHandler(mockRunner)

	mockRunner.On("Trigger", true).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/scrape-data", nil)
	rec := httptest.NewRecorder()
	handler.ScrapeData(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "Data scraping started in background")
	mockRunner.AssertExpectations(t)
}

func TestIngestHandler_ScrapeData_AlreadyRunning(t *testing.T) {
	mockRunner := new(MockIngestTrigger)
	handler := NewIngestHandler(mockRunner)

	mockRunner.On("Trigger", true).Return(domain.ErrIngestionInProgress)

	req := httptest.NewRequest(http.MethodPost, "/api/scrape-data", nil)
	rec := httptest.NewRecorder()
	handler.ScrapeData(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ingestion already in progress")
}

func TestIngestHandler_ScrapeData_UnexpectedError(t *testing.T) {
	mockRunner := new(MockIngestTrigger)
	handler := NewIngestHandler(mockRunner)

	mockRunner.On("Trigger", true).Return(errors.New("runner stopped"))

	req := httptest.NewRequest(http.MethodPost, "/api/scrape-data", nil)
	rec := httptest.NewRecorder()
	handler.ScrapeData(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
