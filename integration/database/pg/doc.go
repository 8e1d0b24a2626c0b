// Package pg provides PostgreSQL connection management with retry logic and
// health checking, built on the pgx driver.
//
// Connect parses the connection string, tunes the pool, and verifies
// connectivity with retried pings before returning:
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	store := authstore.NewPostgres[User](pool)
//	if err := store.EnsureSchema(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// Healthcheck returns a ping function for readiness probes. The error
// classification helpers (IsNotFoundError, IsDuplicateKeyError,
// IsForeignKeyViolationError, IsTxClosedError) give type-safe checks for
// common PostgreSQL failure patterns.
//
// WithTx and TxFromContext propagate a pgx.Tx through context so storage
// code can participate in a caller's transaction:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx)
//
//	ctx = pg.WithTx(ctx, tx)
//	// ... repository calls check pg.TxFromContext(ctx) ...
//	return tx.Commit(ctx)
package pg
