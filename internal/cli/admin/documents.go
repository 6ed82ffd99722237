package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parchlabs/clauseguard/internal/config"
	"github.com/parchlabs/clauseguard/internal/repository"
)

func DocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Inspect documents",
		Long:  "List documents and their analysis status",
	}

	cmd.AddCommand(DocumentsListCmd())

	return cmd
}

func DocumentsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all documents",
		Long:  "List all documents with their status and finding counts",
		RunE:  runDocumentsList,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
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

	docRepo := repository.NewDocumentRepository(pool)
	docs, err := docRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(docs))
		for i, doc := range docs {
			data[i] = map[string]interface{}{
				"id":            doc.ID,
				"title":         doc.Title,
				"status":        string(doc.Status),
				"finding_count": len(doc.RiskSummary),
				"created_at":    doc.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(docs) == 0 {
			fmt.Println("No documents found")
			return nil
		}
		fmt.Println("Documents:")
		for _, doc := range docs {
			fmt.Printf("  %s: %s [%s] %d findings (created: %s)\n",
				doc.ID, doc.Title, doc.Status, len(doc.RiskSummary), doc.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}
