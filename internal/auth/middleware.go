package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/calldeskhq/backend/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Claims carries the authenticated user's identity. Subject is the user id.
type Claims struct {
	CompanyID string     `json:"companyId"`
	Role      types.Role `json:"role"`
	jwt.RegisteredClaims
}

type contextKey string

// UserContextKey holds *Claims for JWT-authenticated requests
const UserContextKey contextKey = "user"

// CompanyContextKey holds the company id for API-key-authenticated requests
const CompanyContextKey contextKey = "company"

// Authenticator validates and issues access tokens. Tokens are signed with
// the shared HS256 secret; when an OIDC issuer is configured, verification
// additionally accepts tokens signed by the issuer's JWKS keys.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	jwks   keyfunc.Keyfunc
	logger zerolog.Logger
}

// New creates an Authenticator using only the shared secret
func New(secret string, ttl time.Duration, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// NewWithJWKS creates an Authenticator that also trusts an OIDC issuer.
// The JWKS is fetched from the issuer's Keycloak-format certs endpoint.
func NewWithJWKS(secret string, ttl time.Duration, issuerURL string, logger zerolog.Logger) (*Authenticator, error) {
	jwksURL := strings.TrimSuffix(issuerURL, "/") + "/protocol/openid-connect/certs"

	k, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create keyfunc: %w", err)
	}

	a := New(secret, ttl, logger)
	a.jwks = k
	a.logger.Info().Str("jwks_url", jwksURL).Msg("JWKS loaded")
	return a, nil
}

// IssueToken signs an access token for the given user
func (a *Authenticator) IssueToken(user types.User) (string, error) {
	now := time.Now()
	claims := Claims{
		CompanyID: user.CompanyID,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// validateToken parses the token against the shared secret, falling back to
// the issuer's JWKS when configured
func (a *Authenticator) validateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err == nil {
		return claims, nil
	}

	if a.jwks != nil {
		claims = &Claims{}
		if _, jwksErr := jwt.ParseWithClaims(tokenString, claims, a.jwks.Keyfunc); jwksErr == nil {
			return claims, nil
		}
	}
	return nil, err
}

// Middleware validates bearer tokens and attaches the claims to the context
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			http.Error(w, "Unauthorized: Missing token", http.StatusUnauthorized)
			return
		}

		claims, err := a.validateToken(tokenString)
		if err != nil {
			a.logger.Debug().Err(err).Msg("token validation failed")
			http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a route group to the given roles. Must run after
// Middleware.
func RequireRole(roles ...types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden: role not granted for this path", http.StatusForbidden)
		})
	}
}

// FromContext returns the JWT claims attached by Middleware
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	return claims, ok
}

// CompanyFromContext returns the company id attached by APIKeyMiddleware
// or, for JWT requests, the company id from the claims
func CompanyFromContext(ctx context.Context) (string, bool) {
	if companyID, ok := ctx.Value(CompanyContextKey).(string); ok {
		return companyID, true
	}
	if claims, ok := FromContext(ctx); ok {
		return claims.CompanyID, true
	}
	return "", false
}

// extractToken gets the token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString != authHeader {
			return tokenString
		}
	}
	return ""
}
