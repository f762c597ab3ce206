// Package middleware holds the HTTP middleware for the server's protected routes.
package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/nick-pape/mcp-custom-command-line/internal/api/ctxkeys"
	pkgauth "github.com/nick-pape/mcp-custom-command-line/pkg/auth"
)

const (
	AuthMethodJWT    = "jwt"
	AuthMethodAPIKey = "api_key"
)

// BearerAuth accepts either a JWT signed with the configured secret or a
// static API key matching one of the configured bcrypt hashes.
type BearerAuth struct {
	secret    []byte
	keyHashes []string
}

// NewBearerAuth returns nil when neither a secret nor key hashes are set,
// which disables authentication.
func NewBearerAuth(secret string, keyHashes []string) *BearerAuth {
	if secret == "" && len(keyHashes) == 0 {
		return nil
	}
	return &BearerAuth{secret: []byte(secret), keyHashes: keyHashes}
}

// Authenticate returns the caller's subject and auth method.
func (a *BearerAuth) Authenticate(token string) (subject, method string, ok bool) {
	if len(a.secret) > 0 {
		if claims, err := pkgauth.ParseToken(a.secret, token); err == nil {
			return claims.Subject, AuthMethodJWT, true
		}
	}
	for i, hash := range a.keyHashes {
		if pkgauth.VerifyToken(hash, token) {
			return "api-key-" + strconv.Itoa(i), AuthMethodAPIKey, true
		}
	}
	return "", "", false
}

// Middleware validates the bearer token and injects the subject into context.
// A nil BearerAuth passes every request through.
//
// Flow:
//  1. Read "Authorization: Bearer <token>" header
//  2. Reject if missing or not Bearer scheme → 401
//  3. Try JWT, then API key hashes → 401 when neither matches
//  4. Inject ctxkeys.Subject and ctxkeys.AuthMethod into context
func (a *BearerAuth) Middleware(next http.Handler) http.Handler {
	if a == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeUnauthorized(w, "missing or invalid Authorization header")
			return
		}

		subject, method, ok := a.Authenticate(token)
		if !ok {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := ctxkeys.WithValue(r.Context(), ctxkeys.Subject, subject)
		ctx = ctxkeys.WithValue(ctx, ctxkeys.AuthMethod, method)
		recordSubject(ctx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
// Returns empty string if header is missing, wrong scheme, or token is empty.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	// Must start with "Bearer " (case-sensitive per RFC 7235)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="mcp-command-line"`)
	writeJSONError(w, http.StatusUnauthorized, message)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
