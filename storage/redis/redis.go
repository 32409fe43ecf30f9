// Package redis provides a Redis-based implementation of the storage.Storage
// interface. Each blob is a single string key so a trace log can be shared by
// several relays writing to the same server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ggoodman/tracker-go/storage"
	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix is used when Config.KeyPrefix is empty.
const DefaultKeyPrefix = "tracker:blob:"

// Config contains configuration options for the Redis storage
type Config struct {
	// Client is the Redis client instance
	Client *redis.Client

	// KeyPrefix is the prefix for all Redis keys
	// Default: "tracker:blob:"
	KeyPrefix string

	// TTL expires blobs that have not been saved for the given duration.
	// Zero keeps them forever.
	TTL time.Duration
}

// EnvConfig is the environment-driven form of Config.
type EnvConfig struct {
	Addr      string        `env:"TRACKER_REDIS_ADDR,default=127.0.0.1:6379"`
	DB        int           `env:"TRACKER_REDIS_DB,default=0"`
	Password  string        `env:"TRACKER_REDIS_PASSWORD"`
	KeyPrefix string        `env:"TRACKER_REDIS_KEY_PREFIX,default=tracker:blob:"`
	TTL       time.Duration `env:"TRACKER_REDIS_TTL,default=0s"`
}

// Storage implements the storage.Storage interface using Redis
type Storage struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	owned     bool
}

// New creates a new Redis-based storage instance.
func New(config Config) (*Storage, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	// Apply defaults
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultKeyPrefix
	}

	return &Storage{
		client:    config.Client,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
	}, nil
}

// NewFromEnv builds a client from TRACKER_REDIS_* variables and verifies it
// can reach the server. The returned Storage owns the client.
func NewFromEnv(ctx context.Context) (*Storage, error) {
	var cfg EnvConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("redis env config: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	s, err := New(Config{Client: client, KeyPrefix: cfg.KeyPrefix, TTL: cfg.TTL})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// Exists reports whether a blob is stored under id.
func (s *Storage) Exists(ctx context.Context, id string) (bool, error) {
	if err := storage.ValidateID(id); err != nil {
		return false, err
	}
	n, err := s.client.Exists(ctx, s.buildKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key %s: %w", s.buildKey(id), err)
	}
	return n > 0, nil
}

// Load returns the blob stored under id.
func (s *Storage) Load(ctx context.Context, id string) ([]byte, error) {
	if err := storage.ValidateID(id); err != nil {
		return nil, err
	}
	redisKey := s.buildKey(id)
	data, err := s.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get key %s: %w", redisKey, err)
	}
	return data, nil
}

// Save stores data under id, refreshing the TTL when one is configured.
func (s *Storage) Save(ctx context.Context, id string, data []byte) error {
	if err := storage.ValidateID(id); err != nil {
		return err
	}
	redisKey := s.buildKey(id)
	if data == nil {
		data = []byte{}
	}
	if err := s.client.Set(ctx, redisKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", redisKey, err)
	}
	return nil
}

// Delete removes the blob stored under id.
func (s *Storage) Delete(ctx context.Context, id string) (bool, error) {
	if err := storage.ValidateID(id); err != nil {
		return false, err
	}
	redisKey := s.buildKey(id)
	n, err := s.client.Del(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete key %s: %w", redisKey, err)
	}
	return n > 0, nil
}

// Close closes the Redis client if this Storage created it.
func (s *Storage) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

// buildKey creates a Redis key from the blob id
func (s *Storage) buildKey(id string) string {
	return s.keyPrefix + id
}

// Compile-time interface check
var _ storage.Storage = (*Storage)(nil)
