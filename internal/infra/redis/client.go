package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/studyclient/internal/core/domain"
)

// Client wraps Redis operations for shared session storage.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func sessionKey(profile string) string {
	return fmt.Sprintf("studyclient:session:%s", profile)
}

// SessionStore keeps one named session profile in Redis so several
// processes share a login.
type SessionStore struct {
	client  *Client
	profile string
	now     func() time.Time
}

// Sessions returns a store for profile ("default" when empty).
func (c *Client) Sessions(profile string) *SessionStore {
	if profile == "" {
		profile = "default"
	}
	return &SessionStore{client: c, profile: profile, now: time.Now}
}

func (s *SessionStore) Get(ctx context.Context) (domain.Session, error) {
	val, err := s.client.rdb.Get(ctx, sessionKey(s.profile)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session failed: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("invalid session payload: %w", err)
	}
	return sess, nil
}

// Set stores the session. A session with an expiry gets a matching key TTL.
func (s *SessionStore) Set(ctx context.Context, sess domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Clear(ctx)
		}
	}

	if err := s.client.rdb.Set(ctx, sessionKey(s.profile), data, ttl).Err(); err != nil {
		return fmt.Errorf("set session failed: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.rdb.Del(ctx, sessionKey(s.profile)).Err(); err != nil {
		return fmt.Errorf("del session failed: %w", err)
	}
	return nil
}
