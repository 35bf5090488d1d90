package redisstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"bookapi/internal/store"

	redis "github.com/redis/go-redis/v9"
)

const defaultPrefix = "bookapi:denylist:"

// Denylist keeps logged-out tokens as Redis keys that expire together with
// the token, so no purge pass is needed.
type Denylist struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func New(client *redis.Client) *Denylist {
	return &Denylist{client: client, prefix: defaultPrefix, now: time.Now}
}

func (d *Denylist) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return d.prefix + hex.EncodeToString(sum[:])
}

func (d *Denylist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(d.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	ok, err := d.client.SetNX(ctx, d.key(token), expiresAt.UTC().Unix(), ttl).Result()
	if err != nil {
		return fmt.Errorf("denylist add: %w", err)
	}
	if !ok {
		return fmt.Errorf("denylist add: %w", store.ErrDuplicate)
	}
	return nil
}

func (d *Denylist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("denylist lookup: %w", err)
	}
	return n > 0, nil
}

// PurgeExpired is a no-op: Redis evicts keys on their TTL.
func (d *Denylist) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (d *Denylist) Close(context.Context) error {
	return d.client.Close()
}
