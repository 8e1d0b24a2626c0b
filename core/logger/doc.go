// Package logger provides slog attribute helpers shared by the middleware
// and integration packages, keeping log field names consistent across the
// module.
//
// Helpers return an empty slog.Attr for zero inputs, so call sites never
// need nil checks:
//
//	log.Info("request completed",
//		logger.Method(r.Method),
//		logger.Path(r.URL.Path),
//		logger.Error(err), // no-op when err is nil
//	)
package logger
