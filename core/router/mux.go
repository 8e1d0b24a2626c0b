package router

import (
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/dmitrymomot/authkit/core/handler"
)

// mux is the private implementation of the Router interface, built on
// net/http ServeMux method patterns.
type mux[C handler.Context] struct {
	mux          *http.ServeMux
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request) C
	logger       *slog.Logger
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		mux:          http.NewServeMux(),
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request) C {
			// Only the default *Context type works without a factory;
			// custom context types must provide one via WithContextFactory.
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(newContext(w, r)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mux.ServeHTTP(w, r)
}

func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.Method(http.MethodGet, pattern, h)
}

func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.Method(http.MethodPost, pattern, h)
}

func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.Method(http.MethodPut, pattern, h)
}

func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.Method(http.MethodDelete, pattern, h)
}

func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.Method(http.MethodPatch, pattern, h)
}

// Method registers a handler for the given HTTP method and pattern.
// The middleware chain is captured at registration time, so Use only
// affects routes registered after the call.
func (m *mux[C]) Method(method, pattern string, h handler.HandlerFunc[C]) {
	if h == nil {
		panic(ErrNilHandler)
	}

	fn := h
	for i := len(m.middlewares) - 1; i >= 0; i-- {
		fn = m.middlewares[i](fn)
	}

	m.mux.HandleFunc(method+" "+pattern, func(w http.ResponseWriter, r *http.Request) {
		m.serve(w, r, fn)
	})
}

func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	m.middlewares = append(m.middlewares, middlewares...)
}

// With returns a view of this router carrying additional middleware.
// Routes registered through the view land on the same underlying mux.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	chain := make([]handler.Middleware[C], 0, len(m.middlewares)+len(middlewares))
	chain = append(chain, m.middlewares...)
	chain = append(chain, middlewares...)

	return &mux[C]{
		mux:          m.mux,
		middlewares:  chain,
		errorHandler: m.errorHandler,
		newContext:   m.newContext,
		logger:       m.logger,
	}
}

// serve runs a single request through the handler chain with panic recovery.
func (m *mux[C]) serve(w http.ResponseWriter, r *http.Request, fn handler.HandlerFunc[C]) {
	ww := newResponseWriter(w)
	ctx := m.newContext(ww, r)

	defer func() {
		if p := recover(); p != nil {
			panicErr := &panicError{value: p, stack: debug.Stack()}

			if ww.Written() {
				// Too late for an error response; log and drop.
				m.logger.Error("panic after response written",
					"value", panicErr.value,
					"path", r.URL.Path,
					"method", r.Method,
				)
				return
			}
			m.errorHandler(ctx, panicErr)
		}
	}()

	resp := fn(ctx)
	if resp == nil {
		m.errorHandler(ctx, ErrNilResponse)
		return
	}

	if err := resp(ww, r); err != nil {
		if ww.Written() {
			m.logger.Error("render error after response written",
				"error", err,
				"path", r.URL.Path,
				"method", r.Method,
			)
			return
		}
		m.errorHandler(ctx, err)
	}
}
