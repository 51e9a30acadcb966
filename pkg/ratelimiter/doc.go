// Package ratelimiter provides token bucket rate limiting for the ingest API.
//
// One token is one log event: relayd charges a whole batch with AllowN, so a
// client posting 500 events pays 500 tokens. A denied request takes nothing
// from the bucket.
//
// Two stores are provided. MemoryStore keeps buckets in process and drops
// idle ones in the background. RedisStore keeps them in Redis hashes updated
// by a Lua script, so several relayd instances share one limit.
//
// # Basic Usage
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       1000,
//		RefillRate:     100,
//		RefillInterval: time.Second,
//	})
//	if err != nil {
//		return err
//	}
//
//	result, err := limiter.AllowN(ctx, clientIP, len(events))
//	if err != nil {
//		return err
//	}
//	if !result.Allowed() {
//		// retry after result.RetryAfter()
//	}
//
// # Shared limits
//
//	store, err := ratelimiter.NewRedisStore(redisClient, ratelimiter.WithKeyPrefix("relayd:rl:"))
//
// # HTTP
//
// Middleware charges one token per request. SetHeaders writes the
// X-RateLimit-Limit, X-RateLimit-Remaining and X-RateLimit-Reset headers
// and Retry-After on denial; handlers that charge by payload size call it
// themselves. ByClientIP, ByHeader and Composite build keys.
package ratelimiter
