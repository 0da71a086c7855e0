package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the news backend.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	NewsAPI   NewsAPIConfig   `mapstructure:"newsapi"`
	Storage   StorageConfig   `mapstructure:"storage"`
	RAG       RAGConfig       `mapstructure:"rag"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// ProvidersConfig contains LLM provider configurations
type ProvidersConfig struct {
	OpenAI OpenAIConfig `mapstructure:"openai"`
}

// OpenAIConfig represents the OpenAI provider configuration
type OpenAIConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	CompletionModel string        `mapstructure:"completion_model"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

func (o OpenAIConfig) Validate() error {
	if strings.TrimSpace(o.APIKey) == "" {
		return fmt.Errorf("providers.openai.api_key is required")
	}
	return nil
}

// NewsAPIConfig contains the upstream headline source configuration
type NewsAPIConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
	PageSize int    `mapstructure:"page_size"`
}

// StorageConfig groups persistent storage settings
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN builds a postgres connection string from the configured fields.
func (p PostgresConfig) DSN() string {
	if strings.TrimSpace(p.URL) != "" {
		return p.URL
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl)
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Addr returns host:port for the redis client.
func (r RedisConfig) Addr() string { return fmt.Sprintf("%s:%s", r.Host, r.Port) }

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" || strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.host and storage.redis.port are required")
	}
	return nil
}

// RAGConfig tunes the retrieval pipeline.
type RAGConfig struct {
	TopK           int           `mapstructure:"top_k"`
	MinScore       float64       `mapstructure:"min_score"`
	MaxInputChars  int           `mapstructure:"max_input_chars"`
	EmbedRetries   int           `mapstructure:"embed_retries"`
	QueryDeadline  time.Duration `mapstructure:"query_deadline"`
	ContextSnippet int           `mapstructure:"context_snippet"`
}

// Normalize applies defaults for unset retrieval values.
func (r RAGConfig) Normalize() RAGConfig {
	if r.TopK <= 0 {
		r.TopK = 5
	}
	if r.MinScore <= 0 {
		r.MinScore = 0.3
	}
	if r.MaxInputChars <= 0 {
		r.MaxInputChars = 8000
	}
	if r.EmbedRetries <= 0 {
		r.EmbedRetries = 2
	}
	if r.QueryDeadline <= 0 {
		r.QueryDeadline = 20 * time.Second
	}
	if r.ContextSnippet <= 0 {
		r.ContextSnippet = 500
	}
	return r
}

// IngestConfig controls the background ingestion scheduler.
type IngestConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	CronSpec   string   `mapstructure:"cron_spec"`
	Categories []string `mapstructure:"categories"`
	FetchBody  bool     `mapstructure:"fetch_body"`
	IndexPath  string   `mapstructure:"index_path"`
}

// Normalize applies defaults for unset ingest values.
func (c IngestConfig) Normalize() IngestConfig {
	if c.CronSpec == "" {
		c.CronSpec = "@hourly"
	}
	return c
}

// LoadConfig loads config from file, with NEWSD_* env overrides.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.SetDefault("server.address", ":10001")
	viper.SetDefault("providers.openai.completion_model", "gpt-4o-mini")
	viper.SetDefault("providers.openai.embedding_model", "text-embedding-3-small")
	viper.SetDefault("providers.openai.temperature", 0.2)
	viper.SetDefault("providers.openai.max_tokens", 500)
	viper.SetDefault("providers.openai.timeout", "60s")
	viper.SetDefault("newsapi.endpoint", "https://newsapi.org/v2/top-headlines")
	viper.SetDefault("newsapi.page_size", 50)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("NEWSD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	config.RAG = config.RAG.Normalize()
	config.Ingest = config.Ingest.Normalize()

	if err := config.Providers.OpenAI.Validate(); err != nil {
		panic(err)
	}
	if err := config.Storage.Postgres.Validate(); err != nil {
		panic(err)
	}
	if err := config.Storage.Redis.Validate(); err != nil {
		panic(err)
	}
	return &config
}
