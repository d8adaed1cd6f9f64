// Package redisstore persists conversation transcripts in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/darkostanimirovic/cinesnap/internal/conversation"
)

const (
	// DefaultKeyPrefix namespaces transcript keys.
	DefaultKeyPrefix = "cinesnap:transcript:"
	// DefaultTTL expires idle conversations after a day.
	DefaultTTL = 24 * time.Hour
)

// Store implements conversation.Store on Redis. Every read and write
// refreshes the key's TTL.
type Store struct {
	client    redis.UniversalClient
	prefix    string
	ttl       time.Duration
	ownClient bool
}

// Option customizes a Store.
type Option func(*Store)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// New wraps an existing client. The caller keeps ownership of it.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultKeyPrefix, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open parses a redis:// URL, pings the server and returns a Store that
// closes the client on Close.
func Open(ctx context.Context, url string, opts ...Option) (*Store, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redisstore: parse url: %w", err)
	}
	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisstore: ping: %w", err)
	}
	s := New(client, opts...)
	s.ownClient = true
	return s, nil
}

// Save writes the transcript, keeping the CreatedAt of an existing record.
func (s *Store) Save(ctx context.Context, t conversation.Transcript) error {
	key := s.key(t.ID)

	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		now := time.Now()
		t.UpdatedAt = now

		if t.CreatedAt.IsZero() {
			existing, err := s.get(ctx, tx, key)
			switch {
			case err == nil:
				t.CreatedAt = existing.CreatedAt
			case errors.Is(err, conversation.ErrTranscriptNotFound):
				t.CreatedAt = now
			default:
				return err
			}
		}

		val, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("redisstore: encode transcript: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, val, s.ttl)
			return nil
		})
		return err
	}, key)
}

// Load returns the transcript or conversation.ErrTranscriptNotFound.
func (s *Store) Load(ctx context.Context, id string) (conversation.Transcript, error) {
	key := s.key(id)
	t, err := s.get(ctx, s.client, key)
	if err != nil {
		return conversation.Transcript{}, err
	}

	// A failed refresh only shortens the key's life.
	_ = s.client.Expire(ctx, key, s.ttl).Err()
	return t, nil
}

// Delete removes the transcript. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

// Close releases the client when the store opened it.
func (s *Store) Close() error {
	if !s.ownClient {
		return nil
	}
	return s.client.Close()
}

func (s *Store) get(ctx context.Context, c getter, key string) (conversation.Transcript, error) {
	val, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return conversation.Transcript{}, conversation.ErrTranscriptNotFound
	}
	if err != nil {
		return conversation.Transcript{}, err
	}

	var t conversation.Transcript
	if err := json.Unmarshal(val, &t); err != nil {
		return conversation.Transcript{}, fmt.Errorf("redisstore: decode transcript: %w", err)
	}
	return t, nil
}

// getter is satisfied by both the client and a WATCH transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Store) key(id string) string {
	return s.prefix + id
}
