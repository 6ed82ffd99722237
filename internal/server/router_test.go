package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/parchlabs/clauseguard/internal/api/handlers"
	"github.com/parchlabs/clauseguard/internal/domain"
	"github.com/parchlabs/clauseguard/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) InitUpload(ctx context.Context, input service.InitUploadInput) (*service.InitUploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InitUploadResult), args.Error(1)
}

func (m *MockDocumentService) CreateDocument(ctx context.Context, input service.CreateDocumentInput) (*domain.Document, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) RequestAnalysis(ctx context.Context, documentID string) (*domain.AnalysisJob, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisJob), args.Error(1)
}

func (m *MockDocumentService) GetByID(ctx context.Context, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListDocumentsOutput), args.Error(1)
}

func (m *MockDocumentService) GetDownloadURL(ctx context.Context, documentID string) (string, error) {
	args := m.Called(ctx, documentID)
	return args.String(0), args.Error(1)
}

type MockAnalysisRunner struct {
	mock.Mock
}

func (m *MockAnalysisRunner) Run(ctx context.Context, documentID string) (int, error) {
	args := m.Called(ctx, documentID)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalysisRunner) MarkFailed(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func setupRouter(internalSecret string) (http.Handler, *MockDocumentService, *MockAnalysisRunner) {
	docSvc := new(MockDocumentService)
	runner := new(MockAnalysisRunner)

	cfg := RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(docSvc, runner),
		InternalSecret:  internalSecret,
	}

	return NewRouter(cfg), docSvc, runner
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _ := setupRouter("")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router, _, _ := setupRouter("")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_GetDocument(t *testing.T) {
	router, docSvc, _ := setupRouter("")

	doc := &domain.Document{
		ID:        "doc-1",
		Title:     "NDA",
		FilePath:  "uploads/doc-1.pdf",
		Status:    domain.DocumentStatusReviewed,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	docSvc.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)

	req := httptest.NewRequest(http.MethodGet, "/documents/doc-1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	docSvc.AssertExpectations(t)
}

func TestRouter_RequestAnalysisRoute(t *testing.T) {
	router, docSvc, _ := setupRouter("")

	job := &domain.AnalysisJob{
		ID:         "job-1",
		DocumentID: "doc-1",
		Status:     domain.AnalysisJobStatusPending,
	}
	docSvc.On("RequestAnalysis", mock.Anything, "doc-1").Return(job, nil)

	req := httptest.NewRequest(http.MethodPost, "/documents/doc-1/analyze", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	docSvc.AssertExpectations(t)
}

func TestRouter_RunAnalysis_RequiresSecret(t *testing.T) {
	router, _, runner := setupRouter("s3cret")

	req := httptest.NewRequest(http.MethodPost, "/documents/doc-1/analyze/run", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestRouter_RunAnalysis_WithSecret(t *testing.T) {
	router, _, runner := setupRouter("s3cret")

	runner.On("Run", mock.Anything, "doc-1").Return(3, nil)

	req := httptest.NewRequest(http.MethodPost, "/documents/doc-1/analyze/run", nil)
	req.Header.Set("X-Internal-Secret", "s3cret")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	runner.AssertExpectations(t)
}

func TestRouter_RunAnalysis_NoSecretConfigured(t *testing.T) {
	router, _, runner := setupRouter("")

	runner.On("Run", mock.Anything, "doc-1").Return(0, nil)

	req := httptest.NewRequest(http.MethodPost, "/documents/doc-1/analyze/run", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	runner.AssertExpectations(t)
}
