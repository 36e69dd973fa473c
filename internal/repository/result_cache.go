package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cash-ai/internal/models"

	"github.com/redis/go-redis/v9"
)

// ResultCache keeps finished pipeline responses and run progress in Redis.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

func resultKey(code string) string {
	return fmt.Sprintf("mapping:result:%s", code)
}

func progressKey(code string) string {
	return fmt.Sprintf("mapping:progress:%s", code)
}

// Get returns nil without error on a cache miss.
func (c *ResultCache) Get(ctx context.Context, code string) (*models.PipelineResponse, error) {
	data, err := c.client.Get(ctx, resultKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var resp models.PipelineResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &resp, nil
}

func (c *ResultCache) Set(ctx context.Context, code string, resp *models.PipelineResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resultKey(code), data, c.ttl).Err()
}

func (c *ResultCache) SetProgress(ctx context.Context, code string, percent float64) error {
	return c.client.Set(ctx, progressKey(code), fmt.Sprintf("%.2f", percent), c.ttl).Err()
}

// Progress returns -1 when no progress was recorded for the run.
func (c *ResultCache) Progress(ctx context.Context, code string) (float64, error) {
	val, err := c.client.Get(ctx, progressKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return -1, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(val, 64)
}
