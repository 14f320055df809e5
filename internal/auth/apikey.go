package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/calldeskhq/backend/internal/types"
	"github.com/rs/zerolog"
)

// CompanyResolver looks up a company from its webhook public key
type CompanyResolver interface {
	GetCompanyByPublicKey(ctx context.Context, publicKey string) (*types.Company, error)
}

// HashSecret returns the hex sha256 digest stored for an API secret key
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// APIKeyMiddleware authenticates dialer webhook requests with basic auth:
// the public key is the username, the secret key the password. On success
// the resolved company id is attached to the context.
func APIKeyMiddleware(resolver CompanyResolver, logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("component", "apikey_auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			encoded := strings.TrimPrefix(authHeader, "Basic ")
			if encoded == authHeader {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			decoded, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			publicKey, secret, found := strings.Cut(string(decoded), ":")
			if !found {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			company, err := resolver.GetCompanyByPublicKey(r.Context(), publicKey)
			if err != nil {
				// Same response as a bad secret so the public key can't be probed
				log.Debug().Err(err).Msg("unknown public key")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			secretHash := HashSecret(secret)
			if subtle.ConstantTimeCompare([]byte(secretHash), []byte(company.SecretKeyHash)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), CompanyContextKey, company.CompanyID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
