package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/soukmarket/souk-api/internal/domain/auth"
)

// Security authenticates requests via HMAC-SHA256 hashed API keys and
// attaches the resolved identity to the request context. It stands in for
// the external authentication collaborator.
type Security struct {
	apikeys auth.Repository
	pepper  []byte
}

// NewSecurity creates a Security with the given API key repository and HMAC
// pepper.
func NewSecurity(apikeys auth.Repository, pepper []byte) *Security {
	return &Security{apikeys: apikeys, pepper: pepper}
}

// Authenticate resolves the bearer API key (Authorization header or api_key
// header), rejects the request with 401 when invalid, and stores the caller
// identity in the context.
func (s *Security) Authenticate(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := bearerToken(r)
		if key == "" {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		mac := hmac.New(sha256.New, s.pepper)
		mac.Write([]byte(key))
		hash := mac.Sum(nil)
		hexHash := hex.EncodeToString(hash)

		info, err := s.apikeys.FindByHash(r.Context(), hexHash)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		// Constant-time comparison guards against timing side-channels even
		// though the lookup already succeeded: the stored hash could differ
		// from what we computed if the repository returns a stale row.
		storedBytes, err := hex.DecodeString(info.KeyHash)
		if err != nil || subtle.ConstantTimeCompare(hash, storedBytes) != 1 {
			respondError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		ctx := auth.WithIdentity(r.Context(), auth.Identity{
			UserID: info.UserID,
			Role:   info.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects non-admin callers with 403.
func (s *Security) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		if !ok || id.Role != auth.RoleAdmin {
			respondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

func bearerToken(r *http.Request) string {
	if v := r.Header.Get("Authorization"); v != "" {
		if after, ok := strings.CutPrefix(v, "Bearer "); ok {
			return after
		}
	}
	return r.Header.Get("api_key")
}

// identity pulls the authenticated caller out of the context; routes behind
// Authenticate always find one.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFrom(r.Context())
	return id
}
