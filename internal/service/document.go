package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/parchlabs/clauseguard/internal/domain"
	"github.com/parchlabs/clauseguard/internal/pagination"
)

// UUIDGenerator generates unique identifiers
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator generates real UUIDs
type DefaultUUIDGenerator struct{}

func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

var _ UUIDGenerator = (*DefaultUUIDGenerator)(nil)

type StorageClientInterface interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	HeadObject(ctx context.Context, key string) (*ObjectMetadata, error)
	FetchObject(ctx context.Context, key string) ([]byte, error)
}

type ObjectMetadata struct {
	ContentLength int64
	ContentType   string
	ETag          string
}

type DocumentRepositoryInterface interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]*domain.Document, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
	SetStatus(ctx context.Context, id string, status domain.DocumentStatus) error
	SetReviewed(ctx context.Context, id string, risks []domain.RiskItem) error
}

type DocumentPageResult struct {
	Items      []*domain.Document
	NextCursor string
	HasMore    bool
}

type AnalysisJobRepositoryInterface interface {
	Enqueue(ctx context.Context, job *domain.AnalysisJob) error
	HasActiveJob(ctx context.Context, documentID string) (bool, error)
}

// DocumentService handles document intake: presigned uploads, registration,
// and queueing analysis runs.
type DocumentService struct {
	docRepo       DocumentRepositoryInterface
	jobRepo       AnalysisJobRepositoryInterface
	storageClient StorageClientInterface
	uuidGen       UUIDGenerator
}

func NewDocumentService(docRepo DocumentRepositoryInterface, jobRepo AnalysisJobRepositoryInterface, storageClient StorageClientInterface) *DocumentService {
	return &DocumentService{
		docRepo:       docRepo,
		jobRepo:       jobRepo,
		storageClient: storageClient,
		uuidGen:       &DefaultUUIDGenerator{},
	}
}

func NewDocumentServiceWithUUIDGen(docRepo DocumentRepositoryInterface, jobRepo AnalysisJobRepositoryInterface, storageClient StorageClientInterface, uuidGen UUIDGenerator) *DocumentService {
	return &DocumentService{
		docRepo:       docRepo,
		jobRepo:       jobRepo,
		storageClient: storageClient,
		uuidGen:       uuidGen,
	}
}

type InitUploadInput struct {
	Filename    string
	ContentType string
}

type InitUploadResult struct {
	FilePath  string
	UploadURL string
}

// InitUpload issues a presigned URL for the client to upload the document
// bytes directly to object storage. The returned FilePath is what the client
// passes back when registering the document.
func (s *DocumentService) InitUpload(ctx context.Context, input InitUploadInput) (*InitUploadResult, error) {
	if input.Filename == "" {
		return nil, domain.ErrMissingRequiredField
	}

	key := buildStorageKey(s.uuidGen.NewString(), input.Filename)

	uploadURL, err := s.storageClient.GenerateUploadURL(ctx, key, input.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &InitUploadResult{
		FilePath:  key,
		UploadURL: uploadURL,
	}, nil
}

type CreateDocumentInput struct {
	Title    string
	Industry string
	FilePath string
}

// CreateDocument registers an uploaded file as a document in the queued
// state and enqueues its first analysis run. The upload is verified against
// storage first so documents never reference missing objects.
func (s *DocumentService) CreateDocument(ctx context.Context, input CreateDocumentInput) (*domain.Document, error) {
	doc := domain.NewDocument(s.uuidGen.NewString(), input.Title, input.Industry, input.FilePath, time.Now().UTC())
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, err
	}

	if _, err := s.storageClient.HeadObject(ctx, input.FilePath); err != nil {
		return nil, fmt.Errorf("failed to verify uploaded file: %w", err)
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	job := domain.NewAnalysisJob(s.uuidGen.NewString(), doc.ID, time.Now().UTC())
	if err := s.jobRepo.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue analysis job: %w", err)
	}

	return doc, nil
}

// RequestAnalysis queues an asynchronous analysis run for the document.
// When a run is already pending or in flight the request is a no-op and the
// returned job is nil, so repeated clicks do not multiply work.
func (s *DocumentService) RequestAnalysis(ctx context.Context, documentID string) (*domain.AnalysisJob, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	active, err := s.jobRepo.HasActiveJob(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active jobs: %w", err)
	}
	if active {
		return nil, nil
	}

	if doc.Status.IsTerminal() {
		if err := s.docRepo.SetStatus(ctx, doc.ID, domain.DocumentStatusQueued); err != nil {
			return nil, err
		}
	}

	job := domain.NewAnalysisJob(s.uuidGen.NewString(), doc.ID, time.Now().UTC())
	if err := s.jobRepo.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue analysis job: %w", err)
	}

	return job, nil
}

func (s *DocumentService) GetByID(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, documentID)
}

func (s *DocumentService) List(ctx context.Context) ([]*domain.Document, error) {
	return s.docRepo.List(ctx)
}

type ListDocumentsInput struct {
	Cursor string
	Limit  int
}

type ListDocumentsOutput struct {
	Items   []*domain.Document
	Cursor  string
	HasMore bool
}

// ListDocuments returns one page of documents, newest first.
func (s *DocumentService) ListDocuments(ctx context.Context, input ListDocumentsInput) (*ListDocumentsOutput, error) {
	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	result, err := s.docRepo.ListWithCursor(ctx, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return &ListDocumentsOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// GetDownloadURL returns a presigned URL for the document's source file.
func (s *DocumentService) GetDownloadURL(ctx context.Context, documentID string) (string, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return "", err
	}

	url, err := s.storageClient.GenerateDownloadURL(ctx, doc.FilePath)
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}

	return url, nil
}

func buildStorageKey(id, filename string) string {
	return fmt.Sprintf("uploads/%s%s", id, filepath.Ext(filename))
}
