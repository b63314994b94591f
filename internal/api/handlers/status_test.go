package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campuskit/virtualta/internal/domain"
	"github.com/campuskit/virtualta/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIndexInfo mocks the index statistics surface
type MockIndexInfo struct {
	mock.Mock
}

func (m *MockIndexInfo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// fakeIngestState reports a fixed ingestion state
type fakeIngestState struct {
	state   jobs.State
	lastErr error
}

func (f *fakeIngestState) Status() (jobs.State, error) { return f.state, f.lastErr }
func (f *fakeIngestState) DataLoaded() bool            { return f.state == jobs.StateReady }

// MockStatusCheckService mocks status check persistence
type MockStatusCheckService struct {
	mock.Mock
}

func (m *MockStatusCheckService) Create(ctx context.Context, clientName string) (*domain.StatusCheck, error) {
	args := m.Called(ctx, clientName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatusCheck), args.Error(1)
}

func (m *MockStatusCheckService) List(ctx context.Context, limit int) ([]*domain.StatusCheck, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.StatusCheck), args.Error(1)
}

func TestStatusHandler_Status_Ready(t *testing.T) {
	mockIndex := new(MockIndexInfo)
	mockChecks := new(MockStatusCheckService)
	handler := NewStatusHandler(mockIndex, &fakeIngestState{state: jobs.StateReady}, mockChecks, true)

	mockIndex.On("Count", mock.Anything).Return(int64(123), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.Status(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "running", resp.Status)
	assert.True(t, resp.DataLoaded)
	assert.Equal(t, "ready", resp.State)
	assert.Equal(t, int64(123), resp.TotalDocuments)
	assert.True(t, resp.OpenAIConfigured)
	assert.Empty(t, resp.LastError)
}

func TestStatusHandler_Status_FailedStateSurfacesError(t *testing.T) {
	mockIndex := new(MockIndexInfo)
	mockChecks := new(MockStatusCheckService)
	ingestErr := errors.New("snapshot unreadable")
	handler := NewStatusHandler(mockIndex, &fakeIngestState{state: jobs.StateFailed, lastErr: ingestErr}, mockChecks, false)

	mockIndex.On("Count", mock.Anything).Return(int64(0), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.Status(rec, req)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.DataLoaded)
	assert.Equal(t, "failed", resp.State)
	assert.Equal(t, "snapshot unreadable", resp.LastError)
	assert.False(t, resp.OpenAIConfigured)
}

func TestStatusHandler_Status_CountFailureStillResponds(t *testing.T) {
	mockIndex := new(MockIndexInfo)
	mockChecks := new(MockStatusCheckService)
	handler := NewStatusHandler(mockIndex, &fakeIngestState{state: jobs.StateReady}, mockChecks, true)

	mockIndex.On("Count", mock.Anything).Return(int64(0), errors.New("db down"))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.Status(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(0), resp.TotalDocuments)
}

func TestStatusHandler_Root(t *testing.T) {
	handler := NewStatusHandler(new(MockIndexInfo), &fakeIngestState{state: jobs.StateNotLoaded}, new(MockStatusCheckService), false)

	req := httptest.NewRequest(http.MethodGet, "/api/", nil)
	rec := httptest.NewRecorder()
	handler.Root(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Virtual TA API is running")
}

func TestStatusHandler_CreateStatusCheck(t *testing.T) {
	mockChecks := new(MockStatusCheckService)
	handler := NewStatusHandler(new(MockIndexInfo), &fakeIngestState{state: jobs.StateReady}, mockChecks, true)

	check := &domain.StatusCheck{ID: "check-1", ClientName: "probe", CreatedAt: time.Now().UTC()}
	mockChecks.On("Create", mock.Anything, "probe").Return(check, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/status-checks", bytes.NewBufferString(`{"client_name":"probe"}`))
	rec := httptest.NewRecorder()
	handler.CreateStatusCheck(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp StatusCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "check-1", resp.ID)
	assert.Equal(t, "probe", resp.ClientName)
}

func TestStatusHandler_CreateStatusCheck_MissingClientName(t *testing.T) {
	mockChecks := new(MockStatusCheckService)
	handler := NewStatusHandler(new(MockIndexInfo), &fakeIngestState{state: jobs.StateReady}, mockChecks, true)

	req := httptest.NewRequest(http.MethodPost, "/api/status-checks", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	handler.CreateStatusCheck(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockChecks.AssertNotCalled(t, "Create")
}

func TestStatusHandler_ListStatusChecks(t *testing.T) {
	mockChecks := new(MockStatusCheckService)
	handler := NewStatusHandler(new(MockIndexInfo), &fakeIngestState{state: jobs.StateReady}, mockChecks, true)

	checks := []*domain.StatusCheck{
		{ID: "check-2", ClientName: "b", CreatedAt: time.Now().UTC()},
		{ID: "check-1", ClientName: "a", CreatedAt: time.Now().UTC().Add(-time.Hour)},
	}
	mockChecks.On("List", mock.Anything, 0).Return(checks, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status-checks", nil)
	rec := httptest.NewRecorder()
	handler.ListStatusChecks(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []*StatusCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "check-2", resp[0].ID)
}
