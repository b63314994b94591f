package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	ChatModel           string `envconfig:"CHAT_MODEL" default:"gpt-3.5-turbo"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	// SnapshotPath points at the scraper's JSON output used for ingestion.
	SnapshotPath string `envconfig:"SNAPSHOT_PATH" default:"data/snapshot.json"`

	// AdminToken guards mutating endpoints (reingest). Empty disables the check.
	AdminToken string `envconfig:"ADMIN_TOKEN"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"virtualta-snapshots"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("VTA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasAdminToken() bool {
	return c.AdminToken != ""
}

// EmbeddingProviderVersion identifies the embedding space the index was
// built with. Changing the model or its dimensionality changes the version.
func (c *Config) EmbeddingProviderVersion() string {
	return fmt.Sprintf("%s/%d", c.EmbeddingModel, c.EmbeddingDimensions)
}
