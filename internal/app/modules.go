// Package app wires the process-wide singletons (config, logger, storage,
// cache, clients, pipeline, engine) with fx, following the same
// infrastructure/clients/services module split the server used.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/secondbrain/core/internal/extract"
	"github.com/secondbrain/core/internal/ingest"
	"github.com/secondbrain/core/internal/retrieval"
	"github.com/secondbrain/core/internal/store"
	"github.com/secondbrain/core/internal/tokenizer"
	"github.com/secondbrain/core/internal/users"
	"github.com/secondbrain/core/pkg/cache"
	"github.com/secondbrain/core/pkg/clients/embedding"
	"github.com/secondbrain/core/pkg/clients/transcription"
	"github.com/secondbrain/core/pkg/config"
	"github.com/secondbrain/core/pkg/logger"
	"github.com/secondbrain/core/pkg/storage"
)

// Module is the application's top-level fx module.
var Module = fx.Options(
	InfrastructureModule,
	ClientsModule,
	ServicesModule,
)

// InfrastructureModule provides configuration, logging, storage, and cache.
var InfrastructureModule = fx.Module("infrastructure",
	fx.Provide(
		NewAppConfig,
		NewAppLogger,
		NewStore,
		NewObjectStorage,
		NewCache,
		NewTokenizer,
	),
)

// ClientsModule provides the outbound provider clients.
var ClientsModule = fx.Module("clients",
	fx.Provide(
		NewEmbeddingClient,
		NewTranscriptionClient,
	),
)

// ServicesModule provides the ingestion pipeline and retrieval engine.
var ServicesModule = fx.Module("services",
	fx.Provide(
		NewAudioExtractor,
		NewPipeline,
		NewRetrievalEngine,
		users.New,
	),
)

func NewAppConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func NewAppLogger() (*slog.Logger, error) {
	if err := logger.Init(); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger.Get(), nil
}

func NewStore(lc fx.Lifecycle, cfg *config.Config) (*store.Store, error) {
	s, err := store.New(context.Background(), cfg.DSN(), cfg.EmbeddingDimensions)
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			s.Close()
			return nil
		},
	})
	return s, nil
}

func NewObjectStorage(cfg *config.Config) (storage.ObjectStorage, error) {
	client, err := storage.NewMinIOClient(storage.MinIOConfig{
		Endpoint:        cfg.MinIO.Endpoint,
		AccessKeyID:     cfg.MinIO.AccessKeyID,
		SecretAccessKey: cfg.MinIO.SecretAccessKey,
		BucketName:      cfg.MinIO.BucketName,
		UseSSL:          cfg.MinIO.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage: %w", err)
	}
	return client, nil
}

func NewCache(lc fx.Lifecycle, cfg *config.Config) (cache.Cache, error) {
	client, err := cache.NewClientFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create cache client: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			client.Close()
			return nil
		},
	})
	return client, nil
}

func NewTokenizer() (*tokenizer.Counter, error) {
	return tokenizer.New()
}

func NewEmbeddingClient(cfg *config.Config) embedding.Embedder {
	return embedding.NewClient(cfg.Services.Embedding)
}

func NewTranscriptionClient(cfg *config.Config) transcription.Transcriber {
	return transcription.NewClient(cfg.Services.Transcription)
}

func NewAudioExtractor(cfg *config.Config, transcriber transcription.Transcriber) *extract.AudioExtractor {
	return extract.NewAudioExtractor(transcriber, cfg.Services.Transcription.Model)
}

func NewPipeline(
	s *store.Store,
	files storage.ObjectStorage,
	embedder embedding.Embedder,
	audioExtractor *extract.AudioExtractor,
	tokens *tokenizer.Counter,
	cfg *config.Config,
) *ingest.Pipeline {
	return ingest.New(
		s, files, embedder, audioExtractor, tokens,
		cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap, cfg.Chunking.TargetDurationMS,
		cfg.Services.Embedding.Model,
	)
}

func NewRetrievalEngine(s *store.Store, embedder embedding.Embedder, c cache.Cache, cfg *config.Config) *retrieval.Engine {
	return retrieval.New(s, embedder, c, cfg.Services.Embedding.Model)
}
