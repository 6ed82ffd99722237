package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchlabs/clauseguard/internal/domain"
)

type mockJobRepo struct {
	jobs   []*domain.AnalysisJob
	active bool
}

func (m *mockJobRepo) Enqueue(_ context.Context, job *domain.AnalysisJob) error {
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockJobRepo) HasActiveJob(_ context.Context, _ string) (bool, error) {
	return m.active, nil
}

type mockUUIDGen struct {
	uuids []string
	calls int
}

func (m *mockUUIDGen) NewString() string {
	if m.calls < len(m.uuids) {
		m.calls++
		return m.uuids[m.calls-1]
	}
	m.calls++
	return "fallback-uuid"
}

func TestInitUpload(t *testing.T) {
	storage := newMockStorageClient()
	svc := NewDocumentServiceWithUUIDGen(newMockDocumentRepo(), &mockJobRepo{}, storage, &mockUUIDGen{uuids: []string{"abc-123"}})

	result, err := svc.InitUpload(context.Background(), InitUploadInput{
		Filename:    "contract.pdf",
		ContentType: "application/pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "uploads/abc-123.pdf", result.FilePath)
	assert.Equal(t, "https://storage.test/upload/uploads/abc-123.pdf", result.UploadURL)
}

func TestInitUpload_MissingFilename(t *testing.T) {
	svc := NewDocumentService(newMockDocumentRepo(), &mockJobRepo{}, newMockStorageClient())

	_, err := svc.InitUpload(context.Background(), InitUploadInput{})

	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
}

func TestCreateDocument(t *testing.T) {
	docRepo := newMockDocumentRepo()
	jobRepo := &mockJobRepo{}
	storage := newMockStorageClient()
	storage.objects["uploads/key.pdf"] = []byte("pdf bytes")
	svc := NewDocumentService(docRepo, jobRepo, storage)

	doc, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		Title:    "Master Services Agreement",
		Industry: "software",
		FilePath: "uploads/key.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusQueued, doc.Status)
	assert.Equal(t, "Master Services Agreement", doc.Title)
	assert.NotEmpty(t, doc.ID)
	_, ok := docRepo.docs[doc.ID]
	assert.True(t, ok, "document persisted")
	require.Len(t, jobRepo.jobs, 1, "intake queues the first analysis run")
	assert.Equal(t, doc.ID, jobRepo.jobs[0].DocumentID)
}

func TestCreateDocument_MissingTitle(t *testing.T) {
	svc := NewDocumentService(newMockDocumentRepo(), &mockJobRepo{}, newMockStorageClient())

	_, err := svc.CreateDocument(context.Background(), CreateDocumentInput{FilePath: "uploads/key.pdf"})

	assert.Error(t, err)
}

func TestCreateDocument_UploadNotVerified(t *testing.T) {
	docRepo := newMockDocumentRepo()
	jobRepo := &mockJobRepo{}
	svc := NewDocumentService(docRepo, jobRepo, newMockStorageClient())

	_, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		Title:    "MSA",
		FilePath: "uploads/never-uploaded.pdf",
	})

	require.Error(t, err)
	assert.Empty(t, docRepo.docs, "no record for an unverified upload")
	assert.Empty(t, jobRepo.jobs)
}

func TestRequestAnalysis(t *testing.T) {
	doc := queuedDocument("doc-1")
	jobRepo := &mockJobRepo{}
	svc := NewDocumentService(newMockDocumentRepo(doc), jobRepo, newMockStorageClient())

	job, err := svc.RequestAnalysis(context.Background(), doc.ID)

	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, doc.ID, job.DocumentID)
	assert.Equal(t, domain.AnalysisJobStatusPending, job.Status)
	assert.Len(t, jobRepo.jobs, 1)
}

func TestRequestAnalysis_DocumentNotFound(t *testing.T) {
	svc := NewDocumentService(newMockDocumentRepo(), &mockJobRepo{}, newMockStorageClient())

	_, err := svc.RequestAnalysis(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestRequestAnalysis_ActiveJobIsNoOp(t *testing.T) {
	doc := queuedDocument("doc-1")
	jobRepo := &mockJobRepo{active: true}
	svc := NewDocumentService(newMockDocumentRepo(doc), jobRepo, newMockStorageClient())

	job, err := svc.RequestAnalysis(context.Background(), doc.ID)

	require.NoError(t, err)
	assert.Nil(t, job)
	assert.Empty(t, jobRepo.jobs, "no duplicate job queued")
}

func TestRequestAnalysis_ReanalyzeReviewedDocument(t *testing.T) {
	doc := queuedDocument("doc-1")
	doc.Status = domain.DocumentStatusReviewed
	jobRepo := &mockJobRepo{}
	svc := NewDocumentService(newMockDocumentRepo(doc), jobRepo, newMockStorageClient())

	job, err := svc.RequestAnalysis(context.Background(), doc.ID)

	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, domain.DocumentStatusQueued, doc.Status, "terminal document returns to the queue")
}

func TestListDocuments_Paginates(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var docs []*domain.Document
	for i := 0; i < 3; i++ {
		doc := queuedDocument(fmt.Sprintf("doc-%d", i))
		doc.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		docs = append(docs, doc)
	}
	svc := NewDocumentService(newMockDocumentRepo(docs...), &mockJobRepo{}, newMockStorageClient())

	first, err := svc.ListDocuments(context.Background(), ListDocumentsInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.True(t, first.HasMore)
	assert.NotEmpty(t, first.Cursor)
	assert.Equal(t, "doc-2", first.Items[0].ID, "newest first")

	second, err := svc.ListDocuments(context.Background(), ListDocumentsInput{Limit: 2, Cursor: first.Cursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.False(t, second.HasMore)
	assert.Empty(t, second.Cursor)
	assert.Equal(t, "doc-0", second.Items[0].ID)
}

func TestGetDownloadURL(t *testing.T) {
	doc := queuedDocument("doc-1")
	svc := NewDocumentService(newMockDocumentRepo(doc), &mockJobRepo{}, newMockStorageClient())

	url, err := svc.GetDownloadURL(context.Background(), doc.ID)

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, doc.FilePath))
}
