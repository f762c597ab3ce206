// Package ctxkeys holds the typed context keys shared by the api packages.
// It is a leaf package so middleware and handlers can both import it.
package ctxkeys

import "context"

// Key is the named type for all API context keys.
// context.Value compares both type and value, so string keys from other
// packages cannot collide with these.
type Key string

const (
	// Subject identifies the authenticated caller. Injected by the auth middleware.
	Subject Key = "subject"

	// AuthMethod records how the caller authenticated ("jwt" or "api_key").
	AuthMethod Key = "auth_method"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}
