package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Revocation checks sit on every authenticated request, so a slow Redis must
// fail quickly rather than stall the request.
const (
	dialTimeout = 2 * time.Second
	ioTimeout   = 500 * time.Millisecond
	pingTimeout = 2 * time.Second
)

// Client wraps the go-redis client shared by the revocation list and the
// login rate limiter.
type Client struct {
	rdb *goredis.Client
}

func New(addr, password string, db int) *Client {
	return &Client{rdb: goredis.NewClient(options(addr, password, db))}
}

func options(addr, password string, db int) *goredis.Options {
	return &goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
		MaxRetries:   1,
	}
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
