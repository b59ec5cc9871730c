// Package redis connects the portal to Redis, which holds server-side bearer
// tokens when TOKEN_STORAGE=redis.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Connect pings until the server answers, at most RetryAttempts times and
// never past ConnectTimeout. Healthcheck plugs into the portal readiness
// probe.
package redis
