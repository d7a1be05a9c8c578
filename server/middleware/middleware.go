// Package middleware provides the HTTP middleware stack: panic recovery,
// request ids, CORS, body-size limiting, and request logging.
package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior. It is the
// standard Go middleware signature and applies to everything mounted on the
// server, Gin routes included.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware. The first in the list is the outermost: it runs
// first on a request and last on a response.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
