package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/parchlabs/clauseguard/internal/analysis"
	"github.com/parchlabs/clauseguard/internal/domain"
	"github.com/parchlabs/clauseguard/internal/extract"
	"github.com/parchlabs/clauseguard/internal/metrics"
	"github.com/parchlabs/clauseguard/internal/telemetry"
)

// ChunkAnalyzer produces findings for one chunk of document text.
type ChunkAnalyzer interface {
	AnalyzeChunk(ctx context.Context, chunk analysis.Chunk) []domain.RiskItem
}

// PipelineService runs the full risk analysis for one document: fetch,
// extract, chunk, analyze, merge, persist. Run is safe to re-execute for the
// same document; every step overwrites rather than appends, so an at-least-
// once job queue can deliver the same document twice without corrupting it.
type PipelineService struct {
	docRepo       DocumentRepositoryInterface
	storageClient StorageClientInterface
	analyzer      ChunkAnalyzer
	chunkCfg      analysis.ChunkConfig
}

func NewPipelineService(docRepo DocumentRepositoryInterface, storageClient StorageClientInterface, analyzer ChunkAnalyzer, chunkCfg analysis.ChunkConfig) *PipelineService {
	if chunkCfg.WindowSize <= 0 {
		chunkCfg = analysis.DefaultChunkConfig()
	}
	return &PipelineService{
		docRepo:       docRepo,
		storageClient: storageClient,
		analyzer:      analyzer,
		chunkCfg:      chunkCfg,
	}
}

// Run analyzes the document and returns the number of merged findings.
// On error the document is left in the processing state; the caller decides
// whether the failure is retryable or should flip the document to error.
func (s *PipelineService) Run(ctx context.Context, documentID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "pipeline.run", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "analyze_document",
	})
	defer span.End()

	started := time.Now()

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return 0, err
	}

	if err := s.docRepo.SetStatus(ctx, doc.ID, domain.DocumentStatusProcessing); err != nil {
		return 0, err
	}

	data, err := s.storageClient.FetchObject(ctx, doc.FilePath)
	if err != nil {
		span.SetError(err)
		return 0, err
	}

	text, err := extract.Text(doc.FilePath, data)
	if err != nil {
		span.SetError(err)
		return 0, fmt.Errorf("failed to extract text: %w", err)
	}

	chunks := analysis.Split(text, s.chunkCfg)
	log.Printf("pipeline: document %s split into %d chunks (%d chars)", doc.ID, len(chunks), len(text))

	var all []domain.RiskItem
	for _, chunk := range chunks {
		items := s.analyzer.AnalyzeChunk(ctx, chunk)
		for i := range items {
			// Model offsets are relative to the chunk; rebase them to the
			// extracted document text.
			items[i].StartIndex += chunk.Start
			items[i].EndIndex += chunk.Start
		}
		all = append(all, items...)
	}

	merged := analysis.Merge(all)

	if err := s.docRepo.SetReviewed(ctx, doc.ID, merged); err != nil {
		span.SetError(err)
		return 0, fmt.Errorf("failed to store findings: %w", err)
	}

	metrics.ObserveDocumentAnalyzed(string(domain.DocumentStatusReviewed), time.Since(started))
	log.Printf("pipeline: document %s reviewed with %d findings", doc.ID, len(merged))
	return len(merged), nil
}

// MarkFailed flips a document to the error state after a permanent failure.
func (s *PipelineService) MarkFailed(ctx context.Context, documentID string) error {
	if err := s.docRepo.SetStatus(ctx, documentID, domain.DocumentStatusError); err != nil {
		return err
	}
	metrics.ObserveDocumentAnalyzed(string(domain.DocumentStatusError), 0)
	return nil
}
