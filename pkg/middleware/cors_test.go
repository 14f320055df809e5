package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	handler := CORS([]string{"https://app.calldesk.example", "http://localhost:5173"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	tests := []struct {
		name       string
		origin     string
		method     string
		wantOrigin string
	}{
		{
			name:       "dashboard origin allowed",
			origin:     "https://app.calldesk.example",
			method:     http.MethodGet,
			wantOrigin: "https://app.calldesk.example",
		},
		{
			name:       "local dev origin allowed",
			origin:     "http://localhost:5173",
			method:     http.MethodGet,
			wantOrigin: "http://localhost:5173",
		},
		{
			name:   "unknown origin rejected",
			origin: "http://evil.example",
			method: http.MethodGet,
		},
		{
			name:       "preflight for allowed origin",
			origin:     "http://localhost:5173",
			method:     http.MethodOptions,
			wantOrigin: "http://localhost:5173",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/datavis/daily-activity", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}
