package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string `mapstructure:"port"`
	DataDir        string `mapstructure:"data_dir"`
	AIBackend      string `mapstructure:"ai_backend"`
	AIEndpoint     string `mapstructure:"ai_endpoint"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	OpenAIAPIKey   string `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey   string `mapstructure:"GEMINI_API_KEY"`
	ChunkSize      int    `mapstructure:"chunk_size"`
	ChunkOverlap   int    `mapstructure:"chunk_overlap"`
	TopK           int    `mapstructure:"top_k"`
	IngestWorkers  int    `mapstructure:"ingest_workers"`
	IngestQueue    int    `mapstructure:"ingest_queue"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("port", "8000")
	v.SetDefault("data_dir", "data")
	v.SetDefault("ai_backend", "openai")
	v.SetDefault("ai_endpoint", "https://api.openai.com/v1")
	v.SetDefault("model", "gpt-3.5-turbo")
	v.SetDefault("embedding_model", "text-embedding-3-small")
	v.SetDefault("chunk_size", 1000)
	v.SetDefault("chunk_overlap", 200)
	v.SetDefault("top_k", 5)
	v.SetDefault("ingest_workers", 1)
	v.SetDefault("ingest_queue", 16)

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// A missing config file is fine: defaults and environment variables
	// fully describe a working setup.
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// Derived paths under the data directory. The layout mirrors what the
// ingestion pipeline and the stores expect on disk.

func (c *Config) RawDir() string {
	return filepath.Join(c.DataDir, "raw")
}

func (c *Config) IndexDir() string {
	return filepath.Join(c.DataDir, "vector_index")
}

func (c *Config) SessionsDir() string {
	return filepath.Join(c.DataDir, "sessions")
}

func (c *Config) MetadataFile() string {
	return filepath.Join(c.DataDir, "metadata.json")
}

func (c *Config) FeedbackFile() string {
	return filepath.Join(c.DataDir, "feedback.json")
}

func (c *Config) ChunksDebugDir() string {
	return filepath.Join(c.DataDir, "chunks_debug")
}
