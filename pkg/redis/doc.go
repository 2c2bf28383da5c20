// Package redis connects the application to Redis.
//
// It wraps github.com/redis/go-redis/v9 with env-driven configuration, a
// retrying Connect, and a readiness probe. Redis is optional here: it backs
// the shared tenant-resolution cache when REDIS_URL is set, and the
// application falls back to its in-process cache when it is not.
package redis
