package redis

import (
	"context"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RevocationList stores revoked token IDs as keys that expire together with
// the token: SET revoked:<jti> 1 PX <remaining>.
type RevocationList struct {
	rdb *goredis.Client
	now func() time.Time
}

func NewRevocationList(c *Client) *RevocationList {
	return &RevocationList{rdb: c.rdb, now: time.Now}
}

func (r *RevocationList) WithClock(now func() time.Time) *RevocationList {
	if now != nil {
		r.now = now
	}
	return r
}

func revokedKey(tokenID string) string { return "revoked:" + tokenID }

func (r *RevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	remaining := until.Sub(r.now())
	if remaining < time.Millisecond {
		// already expired; nothing to remember
		return nil
	}
	return r.rdb.Set(ctx, revokedKey(tokenID), 1, remaining).Err()
}

func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokedToken is one entry of the revocation list.
type RevokedToken struct {
	TokenID   string
	Remaining time.Duration
}

// List walks the revocation list with SCAN. Keys that expire mid-scan are
// skipped.
func (r *RevocationList) List(ctx context.Context, batch int64) ([]RevokedToken, error) {
	if batch <= 0 {
		batch = 200
	}
	var (
		out    []RevokedToken
		cursor uint64
	)
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, revokedKey("*"), batch).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			ttl, err := r.rdb.PTTL(ctx, k).Result()
			if err != nil {
				return nil, err
			}
			if ttl <= 0 {
				continue
			}
			out = append(out, RevokedToken{TokenID: strings.TrimPrefix(k, revokedKey("")), Remaining: ttl})
		}
		cursor = next
		if cursor == 0 {
			return out, nil
		}
	}
}

// Reinstate removes a token ID from the list. It reports whether the ID was
// present.
func (r *RevocationList) Reinstate(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Del(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
