// Package embedding provides a client for OpenAI-compatible embedding APIs.
package embedding

import (
	"context"
	"time"

	"github.com/secondbrain/core/pkg/clients/base"
	"github.com/secondbrain/core/pkg/config"
)

const (
	DefaultTimeout = 30 * time.Second
	ServiceName    = "embedding"
)

// Embedder is the interface the ingestion and retrieval pipelines depend on,
// so tests can supply a fake without a live provider.
type Embedder interface {
	CreateEmbedding(ctx context.Context, req Request) (*Response, error)
	CreateEmbeddingWithDefaults(ctx context.Context, model, text string) (*Response, error)
	CreateBatchEmbedding(ctx context.Context, model string, texts []string) (*Response, error)
}

type Client struct {
	httpClient *base.HTTPClient
	config     config.ServiceConfig
}

var _ Embedder = (*Client)(nil)

func NewClient(cfg config.ServiceConfig) *Client {
	httpClient := base.NewHTTPClient(ServiceName, cfg, DefaultTimeout)
	return &Client{httpClient: httpClient, config: cfg}
}

// Request mirrors the OpenAI /v1/embeddings request body. Input accepts
// either a single string or a []string for batch requests.
type Request struct {
	Model          string      `json:"model"`
	Input          interface{} `json:"input"`
	EncodingFormat string      `json:"encoding_format,omitempty"`
	Dimensions     int         `json:"dimensions,omitempty"`
}

type Data struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type Usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type Response struct {
	Object string `json:"object"`
	Model  string `json:"model"`
	Data   []Data `json:"data"`
	Usage  Usage  `json:"usage"`
}

func (c *Client) CreateEmbedding(ctx context.Context, req Request) (*Response, error) {
	var result Response
	if err := c.httpClient.Post(ctx, "/embeddings", req, &result); err != nil {
		return nil, err
	}
	// The provider may return embeddings out of input order; restore it so
	// callers can zip Data[i] with their original chunk slice by index.
	sortByIndex(result.Data)
	return &result, nil
}

func (c *Client) CreateEmbeddingWithDefaults(ctx context.Context, model, text string) (*Response, error) {
	req := Request{Model: model, Input: text, EncodingFormat: "float"}
	return c.CreateEmbedding(ctx, req)
}

func (c *Client) CreateBatchEmbedding(ctx context.Context, model string, texts []string) (*Response, error) {
	req := Request{Model: model, Input: texts, EncodingFormat: "float"}
	return c.CreateEmbedding(ctx, req)
}

func sortByIndex(data []Data) {
	for i := 1; i < len(data); i++ {
		for j := i; j > 0 && data[j].Index < data[j-1].Index; j-- {
			data[j], data[j-1] = data[j-1], data[j]
		}
	}
}

// Supported embedding models and their fixed output dimensions.
const (
	ModelTextEmbedding3Small = "text-embedding-3-small"
	ModelTextEmbedding3Large = "text-embedding-3-large"
	ModelTextEmbeddingAda002 = "text-embedding-ada-002"
)

// GetDefaultDimensions returns the vector width a model produces; unknown
// models report 1536. Nothing in this module checks the configured
// embedding_dimensions against it.
func GetDefaultDimensions(model string) int {
	switch model {
	case ModelTextEmbedding3Small:
		return 1536
	case ModelTextEmbedding3Large:
		return 3072
	case ModelTextEmbeddingAda002:
		return 1536
	default:
		return 1536
	}
}
