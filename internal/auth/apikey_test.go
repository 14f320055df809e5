package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calldeskhq/backend/internal/types"
	"github.com/rs/zerolog"
)

type fakeResolver struct {
	company *types.Company
}

func (f *fakeResolver) GetCompanyByPublicKey(ctx context.Context, publicKey string) (*types.Company, error) {
	if f.company != nil && f.company.PublicKey == publicKey {
		return f.company, nil
	}
	return nil, context.Canceled
}

func basicAuth(publicKey, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(publicKey+":"+secret))
}

func TestAPIKeyMiddleware(t *testing.T) {
	resolver := &fakeResolver{
		company: &types.Company{
			CompanyID:     "acme",
			PublicKey:     "pk_live_123",
			SecretKeyHash: HashSecret("sk_live_456"),
		},
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"valid credentials", basicAuth("pk_live_123", "sk_live_456"), http.StatusOK},
		{"wrong secret", basicAuth("pk_live_123", "sk_live_bad"), http.StatusUnauthorized},
		{"unknown public key", basicAuth("pk_unknown", "sk_live_456"), http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"not basic auth", "Bearer something", http.StatusUnauthorized},
		{"invalid base64", "Basic %%%", http.StatusUnauthorized},
		{"no separator", "Basic " + base64.StdEncoding.EncodeToString([]byte("justonepart")), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCompanyID string
			handler := APIKeyMiddleware(resolver, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCompanyID, _ = CompanyFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/leaddesk/webhook", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedStatus == http.StatusOK && gotCompanyID != "acme" {
				t.Errorf("expected company acme in context, got %q", gotCompanyID)
			}
		})
	}
}

func TestHashSecret(t *testing.T) {
	if HashSecret("abc") != HashSecret("abc") {
		t.Error("hash must be deterministic")
	}
	if HashSecret("abc") == HashSecret("abd") {
		t.Error("different secrets must hash differently")
	}
	if len(HashSecret("abc")) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(HashSecret("abc")))
	}
}
