// Package store keeps per-user records and copy trade rules in Redis.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlexZinkM/trade-relay/internal/crypto"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("not found")

const (
	saltKey    = "relay:store:salt"
	itemPrefix = "relay:item:"
	walletKey  = "relay:wallet:"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// ScryptN overrides the key derivation cost. Zero uses the default.
	ScryptN int
}

// Store is safe for concurrent use.
type Store struct {
	client *redis.Client
	sealer *crypto.Sealer
	log    *logrus.Logger
}

// New connects to Redis and derives the sealing key from passphrase. The
// salt is created on first use and shared by every process using the same
// database.
func New(ctx context.Context, opts Options, passphrase []byte, log *logrus.Logger) (*Store, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	salt, err := loadSalt(ctx, client)
	if err != nil {
		client.Close()
		return nil, err
	}

	sealer, err := crypto.NewSealer(passphrase, salt, opts.ScryptN)
	if err != nil {
		client.Close()
		return nil, err
	}

	log.WithFields(logrus.Fields{"addr": opts.Addr, "db": opts.DB}).Info("connected to Redis")
	return &Store{client: client, sealer: sealer, log: log}, nil
}

func loadSalt(ctx context.Context, client *redis.Client) ([]byte, error) {
	fresh, err := crypto.NewSalt()
	if err != nil {
		return nil, err
	}
	// Keep whichever salt was written first.
	if err := client.SetNX(ctx, saltKey, fresh, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to store salt: %w", err)
	}
	salt, err := client.Get(ctx, saltKey).Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to load salt: %w", err)
	}
	return salt, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetItem returns the value stored under key.
func (s *Store) GetItem(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, itemPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("item %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get item %q: %w", key, err)
	}
	return v, nil
}

// SetItem stores value under key.
func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, itemPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set item %q: %w", key, err)
	}
	return nil
}

// DeleteItem removes key.
func (s *Store) DeleteItem(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, itemPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete item %q: %w", key, err)
	}
	return nil
}
