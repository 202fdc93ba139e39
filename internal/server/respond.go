package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

// decode parses the request body into dst. On failure it writes a 400 and
// returns false; the handler should return immediately.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

type urlRequest struct {
	URL string `json:"url"`
}

// decodeURL parses a URL request and rejects an empty url with a 400.
func decodeURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req urlRequest
	if !decode(w, r, &req) {
		return "", false
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
		return "", false
	}
	return req.URL, true
}
