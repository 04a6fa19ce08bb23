package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

// newTestClient returns a Client backed by an in-process miniredis.
func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := &Client{rdb: goredis.NewClient(options(mr.Addr(), "", 0))}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}
