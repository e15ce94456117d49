// Package cache provides an optional Redis-backed cache for AES GET
// responses.
//
// The AES landing API serves slow-changing tournament listings without
// cache-control headers, so entries are stored under the full request URL
// with a fixed TTL. The cache is an optimization for repeated runs; the
// client operates identically with caching disabled.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient, 15*time.Minute)
//
//	entry, err := manager.Get(ctx, requestURL)
//	if err == cache.ErrCacheMiss {
//		// fetch from the API
//	}
//
// # Metrics
//
//   - aes_cache_hits_total{layer="redis"} - Cache hits
//   - aes_cache_misses_total - Cache misses
//   - aes_cache_errors_total{operation} - Cache operation errors
package cache
