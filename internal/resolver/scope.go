package resolver

import (
	"context"
	"net/http"
)

type scopeKey struct{}

// Scope is the per-request resolution cache. One Scope is installed
// into the request context at the start of each request and dies with
// it, so resolved values never leak across requests. Entries record
// misses too: a kind that resolved to nothing is not recomputed.
//
// A Scope is confined to its request's goroutine; no locking is needed.
type Scope struct {
	request *http.Request
	entries map[string]any
}

// NewScope constructs a Scope for the given request. The request may be
// nil for non-HTTP callers that still want memoization within one unit
// of work.
func NewScope(r *http.Request) *Scope {
	return &Scope{request: r, entries: make(map[string]any)}
}

// Request returns the request this scope belongs to, if any.
// Request-derived strategies (query parameters, headers) read it.
func (s *Scope) Request() *http.Request {
	return s.request
}

func (s *Scope) lookup(kind string) (any, bool) {
	v, ok := s.entries[kind]
	return v, ok
}

func (s *Scope) store(kind string, value any) {
	s.entries[kind] = value
}

// WithScope installs the scope into the context.
func WithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFrom extracts the scope from the context, or nil when no request
// scope is active.
func ScopeFrom(ctx context.Context) *Scope {
	if ctx == nil {
		return nil
	}
	if s, ok := ctx.Value(scopeKey{}).(*Scope); ok {
		return s
	}
	return nil
}

// Middleware installs a fresh Scope for every inbound request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := NewScope(r)
		next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
	})
}
