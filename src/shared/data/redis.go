package data

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/redis/go-redis/v9"
)

const (
	audiencePrefix = "pollbot:audience:"
	renderPrefix   = "pollbot:render:"
	pendingPrefix  = "pollbot:pending:"

	audienceTTL = 5 * time.Minute
	pendingTTL  = 10 * time.Minute
)

// MustRedis connects to redis or dies. Redis is a cache here, not a source of
// truth, but a misconfigured URL should fail loudly at startup.
func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// CacheAudience stores the resolved member id list for a channel.
func CacheAudience(ctx context.Context, rdb *redis.Client, channelID string, members []string) error {
	payload, err := json.Marshal(members)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, audiencePrefix+channelID, payload, audienceTTL).Err()
}

// CachedAudience returns the cached member id list, or ok=false on a miss.
func CachedAudience(ctx context.Context, rdb *redis.Client, channelID string) ([]string, bool) {
	payload, err := rdb.Get(ctx, audiencePrefix+channelID).Bytes()
	if err != nil {
		return nil, false
	}
	var members []string
	if err := json.Unmarshal(payload, &members); err != nil {
		return nil, false
	}
	return members, true
}

// RenderUnchanged reports whether the rendered content for a poll matches the
// last content we pushed to Discord, and records the new hash. Used to skip
// no-op message edits.
func RenderUnchanged(ctx context.Context, rdb *redis.Client, pollID uint64, content string) bool {
	key := renderPrefix + strconv.FormatUint(pollID, 10)
	sum := strconv.FormatUint(xxhash.ChecksumString64(content), 16)

	prev, err := rdb.Get(ctx, key).Result()
	if err == nil && prev == sum {
		return true
	}
	rdb.Set(ctx, key, sum, 24*time.Hour)
	return false
}

// ForgetRender drops the render hash so the next refresh always edits.
func ForgetRender(ctx context.Context, rdb *redis.Client, pollID uint64) {
	rdb.Del(ctx, renderPrefix+strconv.FormatUint(pollID, 10))
}

// StashPending keeps slash-command parameters between the /poll command and
// its date modal. Keyed by user: a user has at most one creation in flight.
func StashPending(ctx context.Context, rdb *redis.Client, userID string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, pendingPrefix+userID, payload, pendingTTL).Err()
}

// TakePending retrieves and deletes a stashed creation.
func TakePending(ctx context.Context, rdb *redis.Client, userID string, v any) error {
	payload, err := rdb.GetDel(ctx, pendingPrefix+userID).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, v)
}
