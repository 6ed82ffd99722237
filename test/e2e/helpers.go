//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parchlabs/clauseguard/internal/analysis"
	"github.com/parchlabs/clauseguard/internal/api/handlers"
	"github.com/parchlabs/clauseguard/internal/jobs"
	"github.com/parchlabs/clauseguard/internal/llm"
	"github.com/parchlabs/clauseguard/internal/repository"
	"github.com/parchlabs/clauseguard/internal/server"
	"github.com/parchlabs/clauseguard/internal/service"
	"github.com/parchlabs/clauseguard/internal/storage"
	"github.com/parchlabs/clauseguard/internal/testutil"
)

const internalSecret = "e2e-internal-secret"

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	MinIOC       *testutil.MinIOContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	Provider     *scriptedProvider
	Worker       *jobs.AnalysisWorker
	DocRepo      *repository.DocumentRepository
	HTTPClient   *http.Client
}

// scriptedProvider stands in for a real model provider. It returns the
// configured response for every completion call.
type scriptedProvider struct {
	Response string
	Err      error
	Calls    int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, _, _ string, _ llm.Options) (string, error) {
	p.Calls++
	if p.Err != nil {
		return "", p.Err
	}
	return p.Response, nil
}

// FindingResponse builds a valid model response with a single finding.
func FindingResponse(title, level, clauseText string) string {
	finding := map[string]interface{}{
		"clause_title": title,
		"risk_level":   level,
		"summary":      "Flagged during review.",
		"clause_text":  clauseText,
		"start_index":  0,
		"end_index":    len(clauseText),
		"confidence":   0.9,
		"metadata":     map[string]interface{}{"types": []string{"liability"}},
	}
	data, _ := json.Marshal([]interface{}{finding})
	return string(data)
}

// SetupE2EEnv creates a full E2E test environment with containers and server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	minioC := testutil.NewMinIOContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        minioC.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     minioC.AccessKey,
		SecretAccessKey: minioC.SecretKey,
		Bucket:          "test-documents",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}

	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	provider := &scriptedProvider{Response: "[]"}

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		MinIOC:     minioC,
		Pool:       pool,
		S3Client:   s3Client,
		Provider:   provider,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}

	env.ServerURL, env.ServerCloser = env.startServer(port)
	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.MinIOC != nil {
		e.MinIOC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// Reset truncates all tables between tests
func (e *E2ETestEnv) Reset() {
	if err := testutil.TruncateAll(e.Ctx, e.Pool); err != nil {
		e.T.Fatalf("failed to truncate tables: %v", err)
	}
	e.Provider.Response = "[]"
	e.Provider.Err = nil
	e.Provider.Calls = 0
}

// ProcessJobs runs one worker pass, claiming and processing all due jobs.
func (e *E2ETestEnv) ProcessJobs() {
	if err := e.Worker.ProcessJobs(e.Ctx); err != nil {
		e.T.Fatalf("worker pass failed: %v", err)
	}
}

func (e *E2ETestEnv) startServer(port int) (string, func()) {
	docRepo := repository.NewDocumentRepository(e.Pool)
	jobRepo := repository.NewAnalysisJobRepository(e.Pool)
	storageClient := &s3StorageAdapter{client: e.S3Client}

	analyzer := analysis.NewAnalyzer(e.Provider)
	pipeline := service.NewPipelineService(docRepo, storageClient, analyzer, analysis.DefaultChunkConfig())
	docSvc := service.NewDocumentService(docRepo, jobRepo, storageClient)

	e.DocRepo = docRepo
	e.Worker = jobs.NewAnalysisWorker(jobRepo, pipeline, jobs.DefaultConcurrency)

	router := server.NewRouter(server.RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(docSvc, pipeline),
		InternalSecret:  internalSecret,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.T.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(e.T, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, "")
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest("POST", path, body, "")
}

// PostInternal performs a POST request carrying the internal secret header
func (e *E2ETestEnv) PostInternal(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest("POST", path, body, internalSecret)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, secret string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if secret != "" {
		req.Header.Set("X-Internal-Secret", secret)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// UploadFile uploads a file to the presigned URL
func (e *E2ETestEnv) UploadFile(uploadURL string, content []byte, contentType string) error {
	req, err := http.NewRequest("PUT", uploadURL, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, body)
	}

	return nil
}

// DownloadFile downloads a file from the presigned URL
func (e *E2ETestEnv) DownloadFile(downloadURL string) ([]byte, error) {
	resp, err := e.HTTPClient.Get(downloadURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// s3StorageAdapter adapts S3Client to StorageClientInterface
type s3StorageAdapter struct {
	client *storage.S3Client
}

func (a *s3StorageAdapter) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	return a.client.GenerateUploadURL(ctx, key, contentType)
}

func (a *s3StorageAdapter) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	return a.client.GenerateDownloadURL(ctx, key)
}

func (a *s3StorageAdapter) FetchObject(ctx context.Context, key string) ([]byte, error) {
	return a.client.FetchObject(ctx, key)
}

func (a *s3StorageAdapter) HeadObject(ctx context.Context, key string) (*service.ObjectMetadata, error) {
	meta, err := a.client.HeadObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return &service.ObjectMetadata{
		ContentLength: meta.ContentLength,
		ContentType:   meta.ContentType,
		ETag:          meta.ETag,
	}, nil
}
