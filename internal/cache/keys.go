package cache

import (
	"context"
	"fmt"
	"time"
)

const UserKeyPrefix = "user:%d"

const UserTTL = 5 * time.Minute

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
