// Package config provides configuration management for the knowledge base.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Common configuration errors.
var (
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// ServiceConfig holds common configuration for external service clients.
type ServiceConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key" validate:"required"`
	Model   string `mapstructure:"model" validate:"required"`
}

// ChunkingConfig defines text chunking parameters. Sizes are in tokens; the
// chunker multiplies by 4 to get an approximate character target.
type ChunkingConfig struct {
	ChunkSize    int `mapstructure:"chunk_size" validate:"required,min=16"`
	ChunkOverlap int `mapstructure:"chunk_overlap" validate:"min=0"`

	// TargetDurationMS is the temporal chunker's target chunk duration.
	TargetDurationMS int `mapstructure:"target_duration_ms" validate:"min=0"`
}

// Validate checks the chunking configuration and fills in defaults.
func (c *ChunkingConfig) Validate() error {
	if c.ChunkSize == 0 {
		c.ChunkSize = 500
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = 50
	}
	if c.TargetDurationMS == 0 {
		c.TargetDurationMS = 60_000
	}
	if c.ChunkOverlap*4 >= c.ChunkSize*4 {
		return fmt.Errorf("%w: chunk_overlap must be less than chunk_size", ErrInvalidConfig)
	}
	return nil
}

// Config represents the complete application configuration.
type Config struct {
	Database struct {
		Host     string `mapstructure:"host" validate:"required,hostname"`
		Port     int    `mapstructure:"port" validate:"required,min=1,max=65535"`
		User     string `mapstructure:"user" validate:"required"`
		Password string `mapstructure:"password" validate:"required"`
		DBName   string `mapstructure:"dbname" validate:"required"`
	} `mapstructure:"database"`

	Redis struct {
		Host     string `mapstructure:"host" validate:"required,hostname"`
		Port     int    `mapstructure:"port" validate:"required,min=1,max=65535"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db" validate:"min=0,max=15"`
	} `mapstructure:"redis"`

	MinIO struct {
		Endpoint        string `mapstructure:"endpoint" validate:"required"`
		AccessKeyID     string `mapstructure:"access_key_id" validate:"required"`
		SecretAccessKey string `mapstructure:"secret_access_key" validate:"required"`
		BucketName      string `mapstructure:"bucket_name" validate:"required"`
		UseSSL          bool   `mapstructure:"use_ssl"`
	} `mapstructure:"minio"`

	Chunking ChunkingConfig `mapstructure:"chunking"`

	Services struct {
		Embedding      ServiceConfig `mapstructure:"embedding"`
		Transcription  ServiceConfig `mapstructure:"transcription"`
	} `mapstructure:"services"`

	// UploadDir is loaded from configuration but not read by any component:
	// staged source files go to object storage under object keys of the form
	// {user_id}/{audio|documents}/{uuid}{ext}, without an upload_dir prefix.
	UploadDir string `mapstructure:"upload_dir" validate:"required"`

	// MaxFileSizeMB is an advisory upload cap. Validate fills in its
	// default; no component checks file sizes against it.
	MaxFileSizeMB int `mapstructure:"max_file_size_mb"`

	// EmbeddingDimensions must match the configured embedding model and the
	// vector column's declared dimension.
	EmbeddingDimensions int `mapstructure:"embedding_dimensions" validate:"required"`

	Debug bool `mapstructure:"debug"`
}

// Validate performs configuration validation and fills in defaults.
func (c *Config) Validate() error {
	if err := c.Chunking.Validate(); err != nil {
		return fmt.Errorf("chunking config: %w", err)
	}
	if c.MaxFileSizeMB == 0 {
		c.MaxFileSizeMB = 50
	}
	if c.EmbeddingDimensions == 0 {
		return fmt.Errorf("%w: embedding_dimensions is required", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %v", ErrConfigNotFound, err)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("chunking.chunk_size", 500)
	viper.SetDefault("chunking.chunk_overlap", 50)
	viper.SetDefault("chunking.target_duration_ms", 60_000)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("minio.use_ssl", false)

	viper.SetDefault("upload_dir", "./data/uploads")
	viper.SetDefault("max_file_size_mb", 50)
	viper.SetDefault("embedding_dimensions", 1536)
}

// MustLoadConfig loads configuration and panics on failure. Use only in
// main() where a failure to load configuration should be fatal.
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// DSN builds a Postgres connection string from the database section.
// Like the teacher's dsn builder, it assumes a standard libpq-style URL;
// unlike a plain-scheme rewrite, pgx accepts "postgres://" directly.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.DBName)
}
