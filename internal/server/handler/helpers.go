// Package handler implements the HTTP API endpoints. Every response uses the
// status envelope: {"status":"success","data":...} on success and
// {"status":"error","message":...} on failure.
package handler

import (
	"encoding/json"
	"net/http"
)

// envelope is the uniform response wrapper.
type envelope map[string]any

// writeJSON marshals v as JSON and writes it with the given status code. If
// marshaling fails, it falls back to a canned 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"status":"error","message":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeSuccess wraps data in the success envelope.
func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{"status": "success", "data": data})
}

// writeError sends an error envelope with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{"status": "error", "message": msg})
}

// pathParam extracts a named path parameter using Go 1.22+ routing.
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}
