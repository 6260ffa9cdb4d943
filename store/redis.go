package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/hotwords123/judge-v3/types"
)

// ErrNotFound is returned by ProgressCache.Get when submissionID has no
// cached snapshot (either never published or already expired).
var ErrNotFound = errors.New("store: no cached progress for submission")

// ProgressCache is the ephemeral counterpart to ResultSink: it holds the
// most recent JudgeResult snapshot for a submission still in progress,
// so a consumer that reconnects to the progress server (component N)
// after a gap can catch up without replaying the whole run. Grounded on
// judged/fetcher.go's RedisFetcher, generalized from a job queue to a
// key/value snapshot cache.
type ProgressCache struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenProgressCache connects to a Redis instance at url ("redis://host:port/db")
// with the given pool size, verifying it with a Ping — the same
// connect/ping sequence as judged/fetcher.go's NewRedisFetcher.
func OpenProgressCache(url string, poolSize int, ttl time.Duration) (*ProgressCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = poolSize

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping progress cache: %w", err)
	}
	return &ProgressCache{client: client, ttl: ttl}, nil
}

func progressKey(submissionID string) string {
	return "judge:progress:" + submissionID
}

// Set stores result as submissionID's latest snapshot, expiring after
// the cache's configured TTL.
func (c *ProgressCache) Set(ctx context.Context, submissionID string, result *types.JudgeResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal progress for %q: %w", submissionID, err)
	}
	if err := c.client.Set(ctx, progressKey(submissionID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache progress for %q: %w", submissionID, err)
	}
	return nil
}

// Get returns submissionID's cached snapshot, or ErrNotFound if it has
// none.
func (c *ProgressCache) Get(ctx context.Context, submissionID string) (*types.JudgeResult, error) {
	raw, err := c.client.Get(ctx, progressKey(submissionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read progress for %q: %w", submissionID, err)
	}

	var result types.JudgeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshal progress for %q: %w", submissionID, err)
	}
	return &result, nil
}

// Delete removes submissionID's cached snapshot once it has been
// durably saved to the result sink.
func (c *ProgressCache) Delete(ctx context.Context, submissionID string) error {
	return c.client.Del(ctx, progressKey(submissionID)).Err()
}

// Close releases the underlying connection pool.
func (c *ProgressCache) Close() error {
	return c.client.Close()
}
