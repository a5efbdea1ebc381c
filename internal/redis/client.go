package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stone_sales/internal/models"

	"github.com/go-redis/redis/v8"
)

// ErrSessionNotFound is returned when a session key is missing or expired.
var ErrSessionNotFound = errors.New("session not found")

const sessionPrefix = "session:"

type Client struct {
	rdb *redis.Client
}

// SessionData is what a login token resolves to.
type SessionData struct {
	AccountID  uint        `json:"account_id"`
	Username   string      `json:"username"`
	Role       models.Role `json:"role"`
	CustomerID *uint       `json:"customer_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

func Initialize(ctx context.Context, redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewClient wraps an existing go-redis client.
func NewClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) SetSession(ctx context.Context, token string, data *SessionData, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	return c.rdb.Set(ctx, sessionPrefix+token, jsonData, ttl).Err()
}

func (c *Client) GetSession(ctx context.Context, token string) (*SessionData, error) {
	val, err := c.rdb.Get(ctx, sessionPrefix+token).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return &session, nil
}

func (c *Client) DeleteSession(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, sessionPrefix+token).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
