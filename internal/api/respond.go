package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// parseDateRange reads from/to query parameters (YYYY-MM-DD) and normalizes
// end to the very end of that day so evening calls are captured. The
// analytics engine expects this normalization from its callers.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("missing from or to parameters")
	}

	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}

	end = end.Add(24*time.Hour - time.Millisecond)
	return start, end, nil
}
