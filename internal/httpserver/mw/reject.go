package mw

import (
	"encoding/json"
	"net/http"
)

// reject answers with the same {kind, message} body as the API handlers.
func reject(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}{kind, msg})
}
