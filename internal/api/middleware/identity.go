// Package middleware carries the trusted caller identity through requests.
package middleware

import (
	"context"
	"net/http"
)

// Header names set by the upstream gateway. They are trusted as supplied;
// no signature or token verification happens here.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	userEmailKey contextKey = "userEmail"
)

// Identity copies the gateway identity headers into the request context.
// Handlers that require identity reject requests where it is absent.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := r.Header.Get(HeaderUserID); id != "" {
			ctx = context.WithValue(ctx, userIDKey, id)
		}
		if email := r.Header.Get(HeaderUserEmail); email != "" {
			ctx = context.WithValue(ctx, userEmailKey, email)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the caller's user id, or "" when none was supplied.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// UserEmail returns the caller's contact address, or "" when none was supplied.
func UserEmail(ctx context.Context) string {
	email, _ := ctx.Value(userEmailKey).(string)
	return email
}
