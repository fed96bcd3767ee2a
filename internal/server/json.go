package server

import (
	"encoding/json"
	"net/http"
)

// Request bodies are small JSON documents; anything past this limit is a
// client error.
const maxBodyBytes = 1 << 20

// writeJSON renders v as the JSON response body under the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// readJSON decodes the request body into v, capping how much it reads.
func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(v)
}

// writeError emits the API's uniform error envelope, {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
