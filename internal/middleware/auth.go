package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/mpellar/budgetsync/pkg/logger"
)

type Middleware struct {
	AuthClient *auth.Client
}

func NewMiddleware(client *auth.Client) *Middleware {
	return &Middleware{AuthClient: client}
}

// context keys
type contextKey string

const (
	UIDKey   contextKey = "uid"
	EmailKey contextKey = "email"
)

// FirebaseAuth verifies the bearer token and puts the caller's uid on
// the request context.
func (m *Middleware) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "invalid Authorization header", http.StatusUnauthorized)
			return
		}

		uid, email, err := m.VerifyToken(r.Context(), parts[1])
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UIDKey, uid)
		ctx = context.WithValue(ctx, EmailKey, email)
		_, ctx = logger.With(ctx, "uid", uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VerifyToken resolves a raw bearer token to a uid. Shared with the
// websocket handshake, which carries its token in a query parameter
// because browsers cannot set headers on a websocket upgrade.
func (m *Middleware) VerifyToken(ctx context.Context, tokenStr string) (uid, email string, err error) {
	token, err := m.AuthClient.VerifyIDToken(ctx, tokenStr)
	if err != nil {
		return "", "", err
	}
	email, _ = token.Claims["email"].(string)
	return token.UID, email, nil
}

// Helpers to extract identity from context
func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}

func Email(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}
