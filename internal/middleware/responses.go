package middleware

import (
	"encoding/json"
	"net/http"

	chiMid "github.com/go-chi/chi/v5/middleware"
)

type errorBody struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError reports a failed request. Partial requests get a JSON body and
// HX-Reswap: none so the page stays as it was; full page loads get plain text.
// Both carry the request id for support lookups.
func WriteError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	rid := chiMid.GetReqID(r.Context())
	if rid != "" {
		w.Header().Set("X-Request-ID", rid)
	}
	w.Header().Set("Cache-Control", "no-store")
	if !IsHTMX(r.Context()) {
		http.Error(w, msg, code)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("HX-Reswap", "none")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg, Status: code, RequestID: rid})
}
