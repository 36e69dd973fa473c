package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestResultCacheKeys(t *testing.T) {
	assert.Equal(t, "mapping:result:run-1", resultKey("run-1"))
	assert.Equal(t, "mapping:progress:run-1", progressKey("run-1"))
}

func TestResultCacheSurfacesConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	cache := NewResultCache(client, time.Minute)

	ctx := context.Background()
	resp, err := cache.Get(ctx, "run-1")
	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Error(t, cache.SetProgress(ctx, "run-1", 50))
}
