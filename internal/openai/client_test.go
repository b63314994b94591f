package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEmbeddingAPI is a mock for the embedding API
type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockChatAPI is a mock for the chat completion API
type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateChatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := &Client{embeddings: mockAPI, dimensions: 1536}

	ctx := context.Background()
	text := "This is a test document about data science tooling."
	expectedEmbedding := make([]float32, 1536)
	for i := range expectedEmbedding {
		expectedEmbedding[i] = float32(i) * 0.001
	}

	mockAPI.On("CreateEmbeddings", ctx, text).Return(expectedEmbedding, nil)

	embedding, err := client.GenerateEmbedding(ctx, text)

	assert.NoError(t, err)
	assert.Len(t, embedding, 1536)
	assert.Equal(t, expectedEmbedding, embedding)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	client := NewClientWithConfig(Config{})

	ctx := context.Background()
	embedding, err := client.GenerateEmbedding(ctx, "")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Equal(t, ErrEmptyText, err)
}

func TestClient_GenerateEmbedding_APIError(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := &Client{embeddings: mockAPI, dimensions: 1536}

	ctx := context.Background()
	text := "Test text"
	apiErr := errors.New("API rate limit exceeded")

	mockAPI.On("CreateEmbeddings", ctx, text).Return(nil, apiErr)

	embedding, err := client.GenerateEmbedding(ctx, text)

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Contains(t, err.Error(), "failed to create embedding")
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_WrongDimensions(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := &Client{embeddings: mockAPI, dimensions: 1536}

	ctx := context.Background()
	short := make([]float32, 768)

	mockAPI.On("CreateEmbeddings", ctx, "text").Return(short, nil)

	embedding, err := client.GenerateEmbedding(ctx, "text")

	assert.ErrorIs(t, err, ErrWrongDimensions)
	assert.Nil(t, embedding)
}

func TestClient_CreateAnswer_Success(t *testing.T) {
	mockChat := new(MockChatAPI)
	client := &Client{chat: mockChat, dimensions: 1536}

	ctx := context.Background()
	mockChat.On("CreateChatCompletion", ctx, "system", "user question").Return("the answer", nil)

	answer, err := client.CreateAnswer(ctx, "system", "user question")

	assert.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	mockChat.AssertExpectations(t)
}

func TestClient_CreateAnswer_EmptyPrompt(t *testing.T) {
	client := NewClientWithConfig(Config{})

	answer, err := client.CreateAnswer(context.Background(), "system", "   ")

	assert.Error(t, err)
	assert.Empty(t, answer)
	assert.Equal(t, ErrEmptyText, err)
}

func TestClient_CreateAnswer_APIError(t *testing.T) {
	mockChat := new(MockChatAPI)
	client := &Client{chat: mockChat, dimensions: 1536}

	ctx := context.Background()
	mockChat.On("CreateChatCompletion", ctx, "system", "question").Return("", errors.New("model overloaded"))

	answer, err := client.CreateAnswer(ctx, "system", "question")

	assert.Error(t, err)
	assert.Empty(t, answer)
	assert.Contains(t, err.Error(), "failed to create chat completion")
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "test-api-key"})

	assert.NotNil(t, client.embeddings)
	assert.NotNil(t, client.chat)
	assert.Equal(t, DefaultEmbeddingDimensions, client.dimensions)
}

func TestNewClientWithConfig_CustomDimensions(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "k", EmbeddingDimensions: 768})

	assert.Equal(t, 768, client.dimensions)
}
