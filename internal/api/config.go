package api

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	// ServiceName identifies the service in health responses and logs.
	ServiceName = "transaction-service"
	// WelcomeMessage is served from the root path.
	WelcomeMessage = "Welcome to the Transaction Service"

	RequestIDHeader = "X-Request-Id"
)

// validRequestID limits caller-supplied IDs to characters that are safe to
// echo into headers and log lines.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

type requestIDKey struct{}

// RequestID returns the caller's X-Request-Id if it is well formed, or a
// fresh UUID.
func RequestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); validRequestID.MatchString(id) {
		return id
	}
	return uuid.New().String()
}

// WithRequestID stores the request ID in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID stored in ctx, or "" if none.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
