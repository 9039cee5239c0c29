package web

// errors.go provides unified error response handling for the API.
//
// Every error is logged with full technical detail server-side, correlated
// by request ID, and returned to the client as a sanitized JSON body with a
// machine-readable code.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/invoiceflow/importer/internal/importer"
	"github.com/invoiceflow/importer/internal/logging"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError logs the technical error and writes a sanitized JSON response.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
	)

	msg, code := userMessage(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Code: code})
}

// userMessage maps an error onto a client-safe message and code. Unmapped
// errors get a generic message so internals never leak to clients.
func userMessage(err error) (message, code string) {
	switch {
	case errors.Is(err, importer.ErrEmptyFile):
		return "The uploaded file contains no data.", "empty_file"
	case errors.Is(err, importer.ErrUndecodable):
		return "The uploaded file could not be read. Upload a CSV or XLSX export.", "undecodable_file"
	case errors.Is(err, importer.ErrNoKnownFields):
		return "No recognizable columns were found. Check that the first row contains headers.", "no_known_columns"
	case errors.Is(err, errRateLimited):
		return "Too many requests. Try again shortly.", "rate_limited"
	default:
		return "The request could not be processed.", "internal_error"
	}
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; log and move on.
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
