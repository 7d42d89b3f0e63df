// Package cache provides a rueidis-based Redis client used to cache
// fused retrieval results.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/secondbrain/core/pkg/config"
)

// Cache defines the operations the retrieval engine depends on. This
// interface enables a fake in tests without a live Redis instance.
type Cache interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)

	Ping(ctx context.Context) error
	Close()
}

// Client implements Cache using rueidis.
type Client struct {
	client rueidis.Client
}

var _ Cache = (*Client)(nil)

// ClientOptions holds configuration for Redis client creation.
type ClientOptions struct {
	Host     string `validate:"required"`
	Port     int    `validate:"min=1,max=65535"`
	Password string
	DB       int `validate:"min=0,max=15"`
}

func NewClient(opts ClientOptions) (*Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%d", opts.Host, opts.Port)},
		Password:    opts.Password,
		SelectDB:    opts.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis client: %w", err)
	}
	return &Client{client: client}, nil
}

func NewClientFromConfig(cfg *config.Config) (*Client, error) {
	return NewClient(ClientOptions{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func (c *Client) Close() { c.client.Close() }

func (c *Client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	var cmd rueidis.Completed
	if expiration > 0 {
		cmd = c.client.B().Set().Key(key).Value(value).ExSeconds(int64(expiration.Seconds())).Build()
	} else {
		cmd = c.client.B().Set().Key(key).Value(value).Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	cmd := c.client.B().Get().Key(key).Build()
	result := c.client.Do(ctx, cmd)
	if result.Error() != nil {
		if rueidis.IsRedisNil(result.Error()) {
			return "", nil
		}
		return "", result.Error()
	}
	return result.ToString()
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	cmd := c.client.B().Del().Key(keys...).Build()
	return c.client.Do(ctx, cmd).Error()
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	cmd := c.client.B().Exists().Key(key).Build()
	result := c.client.Do(ctx, cmd)
	if result.Error() != nil {
		return false, result.Error()
	}
	count, err := result.ToInt64()
	return count > 0, err
}

func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return c.Set(ctx, key, string(data), expiration)
}

// GetJSON decodes a cached JSON value into dest. The bool return reports
// whether the key was present; a cache miss is not an error.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if data == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return true, nil
}

func (c *Client) Ping(ctx context.Context) error {
	cmd := c.client.B().Ping().Build()
	return c.client.Do(ctx, cmd).Error()
}
