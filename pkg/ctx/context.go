// Package ctx provides a request context for handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helpers for query parsing and the API's
// JSON responses:
//
//	func ShowStatistics(c *ctx.Context) {
//	    month := c.Query("month")
//	    c.JSON(http.StatusOK, stats)
//	}
//
//	// Register with ctx.Wrap:
//	router.Get("/api/statisticsByMonth", "statistics.month", ctx.Wrap(ShowStatistics))
package ctx

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/shashiranjanraj/salesdash/pkg/logger"
	"github.com/shashiranjanraj/salesdash/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc so it can be
// passed to any router method.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

// pool recycles Context objects to reduce GC pressure.
var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// DefaultQuery returns a query-string value, or def if it is empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Logger returns the request-scoped logger.
func (c *Context) Logger() *slog.Logger { return logger.WithCtx(c.R.Context()) }

// JSON writes v with the given status code.
func (c *Context) JSON(code int, v any) {
	response.JSON(c.W, code, v)
}

// Error sends {"message": message} with the given status.
func (c *Context) Error(code int, message string) {
	response.Error(c.W, code, message)
}

// ServerError logs err and sends a 500 with message and err's text.
func (c *Context) ServerError(message string, err error) {
	c.Logger().Error(message, "error", err, "path", c.R.URL.Path)
	response.ServerError(c.W, message, err)
}
