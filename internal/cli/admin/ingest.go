package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/campuskit/virtualta/internal/config"
	"github.com/campuskit/virtualta/internal/database"
	"github.com/campuskit/virtualta/internal/openai"
	"github.com/campuskit/virtualta/internal/repository"
	"github.com/campuskit/virtualta/internal/service"
	"github.com/campuskit/virtualta/internal/source"
	openaiapi "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

// IngestCmd returns the ingest command for one-shot snapshot loading
// without running the server.
func IngestCmd() *cobra.Command {
	var (
		snapshotPath string
		clearFirst   bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a scraper snapshot into the index",
		Long:  "Embeds and indexes the documents of a scraper snapshot file, then exits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), snapshotPath, clearFirst)
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Snapshot file to ingest (defaults to VTA_SNAPSHOT_PATH)")
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "Clear the index before ingesting")

	return cmd
}

func runIngest(ctx context.Context, snapshotPath string, clearFirst bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY is required for ingestion")
	}

	if snapshotPath == "" {
		snapshotPath = cfg.SnapshotPath
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	client := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      openaiapi.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		ChatModel:           cfg.ChatModel,
	})

	docRepo := repository.NewDocumentRepository(pool)
	metaRepo := repository.NewIndexMetaRepository(pool)
	txRunner := repository.NewTxRunner(pool)
	indexSvc := service.NewIndexService(docRepo, metaRepo, txRunner, client, cfg.EmbeddingProviderVersion())

	if clearFirst {
		if err := indexSvc.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
		log.Println("index cleared")
	}

	docs, err := source.NewFileSource(snapshotPath).Fetch(ctx)
	if err != nil {
		return err
	}

	inserted, err := indexSvc.Ingest(ctx, docs)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	log.Printf("ingested %d of %d documents from %s", inserted, len(docs), snapshotPath)
	return nil
}
