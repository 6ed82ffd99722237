package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parchlabs/clauseguard/internal/api"
	"github.com/parchlabs/clauseguard/internal/domain"
	"github.com/parchlabs/clauseguard/internal/service"
)

type DocumentService interface {
	InitUpload(ctx context.Context, input service.InitUploadInput) (*service.InitUploadResult, error)
	CreateDocument(ctx context.Context, input service.CreateDocumentInput) (*domain.Document, error)
	RequestAnalysis(ctx context.Context, documentID string) (*domain.AnalysisJob, error)
	GetByID(ctx context.Context, documentID string) (*domain.Document, error)
	ListDocuments(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error)
	GetDownloadURL(ctx context.Context, documentID string) (string, error)
}

// AnalysisRunner runs the analysis pipeline synchronously for one document.
type AnalysisRunner interface {
	Run(ctx context.Context, documentID string) (int, error)
	MarkFailed(ctx context.Context, documentID string) error
}

type DocumentHandler struct {
	svc    DocumentService
	runner AnalysisRunner
}

func NewDocumentHandler(svc DocumentService, runner AnalysisRunner) *DocumentHandler {
	return &DocumentHandler{svc: svc, runner: runner}
}

type InitUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type InitUploadResponse struct {
	FilePath  string `json:"file_path"`
	UploadURL string `json:"upload_url"`
}

type CreateDocumentRequest struct {
	Title    string `json:"title"`
	Industry string `json:"industry,omitempty"`
	FilePath string `json:"file_path"`
}

type DocumentResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Industry    string            `json:"industry,omitempty"`
	FilePath    string            `json:"file_path"`
	Status      string            `json:"status"`
	RiskSummary []domain.RiskItem `json:"risk_summary"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

type AnalysisJobResponse struct {
	JobID      string `json:"job_id"`
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

type RunAnalysisResponse struct {
	DocumentID   string `json:"document_id"`
	FindingCount int    `json:"finding_count"`
}

type DownloadURLResponse struct {
	DownloadURL string `json:"download_url"`
}

// documentToResponse keeps RiskSummary untouched: the field stays null until
// the pipeline reviews the document, and reviewed documents always carry an
// array, so clients can tell "not analyzed yet" from "analyzed, nothing found".
func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:          d.ID,
		Title:       d.Title,
		Industry:    d.Industry,
		FilePath:    d.FilePath,
		Status:      string(d.Status),
		RiskSummary: d.RiskSummary,
		CreatedAt:   d.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   d.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *DocumentHandler) InitUpload(w http.ResponseWriter, r *http.Request) {
	var req InitUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Filename == "" {
		api.Error(w, http.StatusBadRequest, "filename is required")
		return
	}

	result, err := h.svc.InitUpload(r.Context(), service.InitUploadInput{
		Filename:    req.Filename,
		ContentType: req.ContentType,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, InitUploadResponse{
		FilePath:  result.FilePath,
		UploadURL: result.UploadURL,
	})
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.FilePath == "" {
		api.Error(w, http.StatusBadRequest, "file_path is required")
		return
	}

	doc, err := h.svc.CreateDocument(r.Context(), service.CreateDocumentInput{
		Title:    req.Title,
		Industry: req.Industry,
		FilePath: req.FilePath,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, documentToResponse(doc))
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	doc, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

type DocumentListResponse struct {
	Items   []*DocumentResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
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

	items := make([]*DocumentResponse, 0, len(out.Items))
	for _, doc := range out.Items {
		items = append(items, documentToResponse(doc))
	}

	api.Success(w, http.StatusOK, DocumentListResponse{
		Items:   items,
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	})
}

// RequestAnalysis queues an asynchronous analysis run and returns 202. If a
// run is already pending or in flight the existing run is reported instead of
// queueing another.
func (h *DocumentHandler) RequestAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	job, err := h.svc.RequestAnalysis(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if job == nil {
		api.Success(w, http.StatusAccepted, AnalysisJobResponse{
			DocumentID: id,
			Status:     "already_queued",
		})
		return
	}

	api.Success(w, http.StatusAccepted, AnalysisJobResponse{
		JobID:      job.ID,
		DocumentID: job.DocumentID,
		Status:     string(job.Status),
	})
}

// RunAnalysis executes the pipeline inline and blocks until it finishes.
// Used by internal tooling; regular clients go through RequestAnalysis.
func (h *DocumentHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	count, err := h.runner.Run(r.Context(), id)
	if err != nil {
		// No retry budget on the synchronous path, so a failed run marks
		// the document immediately. Best effort when the document itself
		// is missing.
		_ = h.runner.MarkFailed(r.Context(), id)
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, RunAnalysisResponse{
		DocumentID:   id,
		FindingCount: count,
	})
}

func (h *DocumentHandler) GetDownloadURL(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	downloadURL, err := h.svc.GetDownloadURL(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DownloadURLResponse{
		DownloadURL: downloadURL,
	})
}
