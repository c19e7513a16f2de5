package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	connectTimeout = 5 * time.Second
	readTimeout    = 3 * time.Second
	writeTimeout   = 3 * time.Second
)

// Client wraps the go-redis client shared by the view caches and the swap
// event stream.
type Client struct {
	*redis.Client
}

// NewClient connects to Redis and verifies the connection with a ping before
// handing the client out. Read views and event delivery both depend on this
// connection, so failing here fails startup.
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  connectTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{Client: rdb}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}
