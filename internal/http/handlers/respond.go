// Package handlers contains the public HTTP handlers for intake, proposal
// retrieval, and the qualification dialogue.
package handlers

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the failure envelope for every endpoint.
type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError emits the {ok:false, error} envelope. The message is
// client-facing; upstream diagnostics stay in the logs.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{OK: false, Error: message})
}
