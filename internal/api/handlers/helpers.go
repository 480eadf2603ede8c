package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

// writeError answers with the standard {"error": msg} body. Server-side
// failures also get a log line; client errors are the caller's problem.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= http.StatusInternalServerError {
		log.Printf("request failed: method=%s path=%s status=%d msg=%q", r.Method, r.URL.Path, status, msg)
	}
	writeJSON(w, r, status, map[string]string{"error": msg})
}
