package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zero-day-ai/kleegraph/config"
)

// RedisOptions configures the Redis connection of a RedisSink.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// KeyPrefix prefixes report keys. Default: "kleegraph:report"
	KeyPrefix string

	// Channel receives the id of each written report. Default: "kleegraph:reports"
	Channel string

	// TTL expires stored reports. Zero keeps them.
	TTL time.Duration

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration
}

// RedisSink stores reports in Redis.
type RedisSink struct {
	client  *redis.Client
	prefix  string
	channel string
	ttl     time.Duration
}

// NewRedisSink connects to Redis and verifies the connection with PING.
func NewRedisSink(ctx context.Context, opts RedisOptions) (*RedisSink, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = config.DefaultRedisKeyPrefix
	}
	if opts.Channel == "" {
		opts.Channel = config.DefaultRedisChannel
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSink{
		client:  client,
		prefix:  opts.KeyPrefix,
		channel: opts.Channel,
		ttl:     opts.TTL,
	}, nil
}

// Key returns the key holding the report with id.
func (s *RedisSink) Key(id string) string {
	return s.prefix + ":" + id
}

// LatestKey returns the key holding the id of the newest report.
func (s *RedisSink) LatestKey() string {
	return s.prefix + ":latest"
}

// Write stores the report, updates the latest pointer and announces the id.
func (s *RedisSink) Write(ctx context.Context, r *Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.Key(r.ID), data, s.ttl)
	pipe.Set(ctx, s.LatestKey(), r.ID, s.ttl)
	pipe.Publish(ctx, s.channel, r.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store report %s: %w", r.ID, err)
	}
	return nil
}

// Fetch returns the raw JSON of the report with id.
func (s *RedisSink) Fetch(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.Key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("report %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch report %s: %w", id, err)
	}
	return data, nil
}

// String returns the destination for logs.
func (s *RedisSink) String() string {
	return "redis:" + s.prefix
}

// Close closes the Redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
