package server

import "errors"

var (
	// ErrMissingAddress is returned when the server address is not provided.
	ErrMissingAddress = errors.New("server address is required")

	// ErrServerAlreadyRunning is returned by Start on a running server.
	ErrServerAlreadyRunning = errors.New("server is already running")

	// ErrHTTPServer wraps bind and listener failures.
	ErrHTTPServer = errors.New("HTTP server error")

	// ErrHTTPShutdown wraps graceful shutdown failures.
	ErrHTTPShutdown = errors.New("HTTP shutdown error")
)
