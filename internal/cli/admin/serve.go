package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuskit/virtualta/internal/api/handlers"
	"github.com/campuskit/virtualta/internal/config"
	"github.com/campuskit/virtualta/internal/database"
	"github.com/campuskit/virtualta/internal/jobs"
	"github.com/campuskit/virtualta/internal/openai"
	"github.com/campuskit/virtualta/internal/repository"
	"github.com/campuskit/virtualta/internal/server"
	"github.com/campuskit/virtualta/internal/service"
	"github.com/campuskit/virtualta/internal/source"
	"github.com/campuskit/virtualta/internal/storage"
	"github.com/campuskit/virtualta/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	openaiapi "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the virtual TA API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	docRepo := repository.NewDocumentRepository(pool)
	metaRepo := repository.NewIndexMetaRepository(pool)
	statusCheckRepo := repository.NewStatusCheckRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	var embeddingClient service.EmbeddingClient
	var chatClient service.ChatClient
	if cfg.HasOpenAI() {
		client := openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			EmbeddingModel:      openaiapi.EmbeddingModel(cfg.EmbeddingModel),
			EmbeddingDimensions: cfg.EmbeddingDimensions,
			ChatModel:           cfg.ChatModel,
		})
		embeddingClient = client
		chatClient = client
	} else {
		log.Println("OPENAI_API_KEY not set: answers fall back to retrieved excerpts")
		embeddingClient = &NoOpEmbeddingClient{}
		chatClient = &NoOpChatClient{}
	}

	indexSvc := service.NewIndexService(docRepo, metaRepo, txRunner, embeddingClient, cfg.EmbeddingProviderVersion())
	answerSvc := service.NewAnswerService(indexSvc, chatClient)
	statusCheckSvc := service.NewStatusCheckService(statusCheckRepo)

	var archiver jobs.SnapshotArchiver
	if cfg.HasS3() {
		archive, err := storage.NewSnapshotArchive(ctx, storage.SnapshotArchiveConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create snapshot archive: %w", err)
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		archiver = archive
	}

	docSource := source.NewFallbackSource(
		source.NewFileSource(cfg.SnapshotPath),
		source.NewSampleSource(),
	)

	runner := jobs.NewIngestRunner(indexSvc, docSource, archiver, cfg.SnapshotPath)
	go runner.Start(ctx)
	if err := runner.EnsureLoaded(ctx); err != nil {
		log.Printf("initial load trigger failed: %v", err)
	}

	routerCfg := server.RouterConfig{
		AdminToken:       cfg.AdminToken,
		AnswerHandler:    handlers.NewAnswerHandler(answerSvc, runner),
		StatusHandler:    handlers.NewStatusHandler(indexSvc, runner, statusCheckSvc, cfg.HasOpenAI()),
		IngestHandler:    handlers.NewIngestHandler(runner),
		DocumentsHandler: handlers.NewDocumentsHandler(indexSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	runner.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// NoOpEmbeddingClient stands in when no OpenAI key is configured. Every
// embedding attempt fails, so ingestion skips documents and queries degrade
// to empty results.
type NoOpEmbeddingClient struct{}

func (c *NoOpEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("embedding client not configured: OPENAI_API_KEY required")
}

// NoOpChatClient stands in when no OpenAI key is configured, forcing the
// answer pipeline onto its deterministic fallback.
type NoOpChatClient struct{}

func (c *NoOpChatClient) CreateAnswer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", fmt.Errorf("chat client not configured: OPENAI_API_KEY required")
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, versionErr := m.Version()
	line, err := migrationOutcome(upErr, version, dirty, versionErr)
	if err != nil {
		return err
	}
	log.Println(line)
	return nil
}

// migrationOutcome resolves the log line (or error) after an Up attempt.
// upErr is nil when migrations were applied and migrate.ErrNoChange when
// the schema was already current.
func migrationOutcome(upErr error, version uint, dirty bool, versionErr error) (string, error) {
	if versionErr == migrate.ErrNilVersion {
		return "migrations: database is up to date (no migrations applied)", nil
	}
	if versionErr != nil {
		return "", fmt.Errorf("failed to get migration version: %w", versionErr)
	}
	if dirty {
		return "", fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}
	if upErr == migrate.ErrNoChange {
		return fmt.Sprintf("migrations: database is up to date (version %d)", version), nil
	}
	return fmt.Sprintf("migrations: applied successfully (version %d)", version), nil
}
