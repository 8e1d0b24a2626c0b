// Package server provides an HTTP server with graceful shutdown,
// configurable timeouts, and errgroup-friendly lifecycle management.
//
// Basic usage:
//
//	srv := server.New(":8080", server.WithShutdownTimeout(10*time.Second))
//	if err := srv.Start(ctx, mux); err != nil {
//		log.Fatal(err)
//	}
//
// For coordinated lifecycles with other components, use Run with errgroup:
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, mux))
//	if err := g.Wait(); err != nil {
//		log.Fatal(err)
//	}
//
// Configuration can be loaded from the environment:
//
//	var cfg server.Config
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//	srv, err := server.NewFromConfig(cfg)
package server
