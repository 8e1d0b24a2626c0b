// Package redis provides Redis client initialization with connection
// verification and health checking.
//
// Connect validates the URL, dials with exponential backoff, and pings
// before returning the client:
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	store := authstore.NewRedis[User](client)
//
// Both redis:// and rediss:// (TLS) URL schemes are supported. Healthcheck
// returns a ping function for readiness probes. Errors wrap the sentinel
// values in errors.go, so errors.Is works for retry and reporting logic.
package redis
