// Package auth defines the identity contract fulfilled by the external
// authentication collaborator. The API itself never issues tokens; it only
// resolves presented API keys to an identity.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrKeyNotFound is returned when no stored API key matches the presented
// hash.
var ErrKeyNotFound = errors.New("api key not found")

// Role enumerates the access levels known to the API.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID string
	Role   Role
}

// APIKeyInfo holds the stored data for a validated API key.
type APIKeyInfo struct {
	ID      string
	UserID  string
	KeyHash string
	Role    Role
}

// Repository provides lookup of API keys by their HMAC-SHA256 hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

type identityKey struct{}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the authenticated identity from the context.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
