package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/authkit/core/handler"
)

var (
	ErrNoContextFactory = errors.New("no context factory provided")
	ErrNilHandler       = errors.New("nil handler")
	ErrNilResponse      = errors.New("nil response")
)

// statusCode is an unexported interface that errors can implement
// to provide a custom HTTP status code (see response.HTTPError).
type statusCode interface {
	StatusCode() int
}

// defaultErrorHandler renders errors as JSON, honoring the statusCode
// interface and defaulting to 500 for unrecognized errors.
func defaultErrorHandler[C handler.Context](ctx C, err error) {
	w := ctx.ResponseWriter()

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if status == http.StatusInternalServerError {
		// Internal error details never reach the client.
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    "internal_server_error",
			"message": http.StatusText(http.StatusInternalServerError),
		})
		return
	}

	if sc != nil {
		_ = json.NewEncoder(w).Encode(sc)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
}

// PanicError allows external error handlers to detect recovered panics and
// access the original panic value and stack trace.
type PanicError interface {
	error
	Value() any
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

// Error implements the error interface.
func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// Value returns the original panic value.
func (e *panicError) Value() any {
	return e.value
}

// Stack returns the stack trace captured at the panic point.
func (e *panicError) Stack() []byte {
	return e.stack
}

// Unwrap allows errors.Is/As to work with wrapped panics.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
