// Package ratelimiter counts attempts per key in fixed windows. The portal
// uses it to throttle sign-in attempts per client address.
//
//	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Limit:  5,
//		Window: time.Minute,
//	})
//	res, err := limiter.Allow(ctx, "login:"+ip)
//	if err == nil && !res.Allowed() {
//		w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfterSeconds()))
//	}
//
// MemoryStore keeps counters in process; RedisStore shares them between
// portal instances.
package ratelimiter
