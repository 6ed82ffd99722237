package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/parchlabs/clauseguard/internal/analysis"
	"github.com/parchlabs/clauseguard/internal/config"
	"github.com/parchlabs/clauseguard/internal/database"
	"github.com/parchlabs/clauseguard/internal/llm"
	"github.com/parchlabs/clauseguard/internal/repository"
	"github.com/parchlabs/clauseguard/internal/service"
	"github.com/parchlabs/clauseguard/internal/storage"
)

func AnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <document-id>",
		Short: "Run risk analysis for a document",
		Long:  "Run the full analysis pipeline synchronously for one document, bypassing the job queue",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	documentID := args[0]
	outputFormat, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := getDBPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if !cfg.HasS3() {
		return fmt.Errorf("object storage not configured")
	}
	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}

	if !cfg.HasProvider() {
		return fmt.Errorf("model provider %q has no API key configured", cfg.LLMProvider)
	}
	provider, err := llm.New(ctx, llm.Config{
		Provider:          cfg.LLMProvider,
		APIKey:            cfg.ProviderAPIKey(),
		Model:             cfg.LLMModel,
		BaseURL:           cfg.OpenRouterBaseURL,
		RequestsPerMinute: cfg.LLMRatePerMinute,
	})
	if err != nil {
		return fmt.Errorf("failed to create model provider: %w", err)
	}

	docRepo := repository.NewDocumentRepository(pool)
	analyzer := analysis.NewAnalyzer(provider, analysis.WithMaxAttempts(cfg.AnalysisMaxAttempts))
	pipeline := service.NewPipelineService(docRepo, &S3StorageAdapter{client: s3Client}, analyzer, analysis.ChunkConfig{
		WindowSize: cfg.ChunkWindowSize,
		Overlap:    cfg.ChunkOverlap,
	})

	count, err := pipeline.Run(ctx, documentID)
	if err != nil {
		if markErr := pipeline.MarkFailed(ctx, documentID); markErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to mark document as errored: %v\n", markErr)
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"document_id":   documentID,
			"finding_count": count,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Document %s reviewed: %d findings\n", documentID, count)
	}

	return nil
}

func getDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
}
