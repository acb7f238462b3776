package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// selectionTTL bounds how long a pre-selected account type survives an
// abandoned OAuth redirect.
const selectionTTL = time.Hour

// SelectionCache stores the account type chosen before an OAuth redirect.
// Key format: selection:<subject>
type SelectionCache struct {
	client *redis.Client
}

func NewSelectionCache(client *redis.Client) *SelectionCache {
	return &SelectionCache{client: client}
}

func (c *SelectionCache) StorePending(ctx context.Context, subject, role string) error {
	return c.client.Set(ctx, c.key(subject), role, selectionTTL).Err()
}

// TakePending reads and clears the pending selection in a single GETDEL,
// so the value can only ever be consumed once. An absent entry yields "".
func (c *SelectionCache) TakePending(ctx context.Context, subject string) (string, error) {
	role, err := c.client.GetDel(ctx, c.key(subject)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("pending selection: %w", err)
	}
	return role, nil
}

func (c *SelectionCache) key(subject string) string {
	return "selection:" + subject
}
