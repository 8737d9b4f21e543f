package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mbarros/simvest/internal/models"
)

// ErrorResponse is the standard error format for REST API responses.
// Available/Requested carry shortfall amounts for trade rejections.
type ErrorResponse struct {
	Error     string  `json:"error"`
	Code      string  `json:"code,omitempty"`
	Available float64 `json:"available,omitempty"`
	Requested float64 `json:"requested,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteFault maps a service error onto the HTTP surface: typed faults
// carry their own status code and machine-readable code, everything else
// is a 500.
func WriteFault(w http.ResponseWriter, err error) {
	var fault *models.Fault
	if errors.As(err, &fault) {
		WriteJSON(w, fault.Kind.HTTPStatus(), ErrorResponse{
			Error:     fault.Message,
			Code:      string(fault.Kind),
			Available: fault.Available,
			Requested: fault.Requested,
		})
		return
	}
	WriteError(w, http.StatusInternalServerError, err.Error())
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// ParseDate parses a YYYY-MM-DD request field. Returns false and writes
// a 400 error when the value is missing or malformed.
func ParseDate(w http.ResponseWriter, field, value string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid "+field+": expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}

// PathParam extracts a path parameter from the URL path.
// For a pattern like /api/simulations/manual/{id}/trade, calling
// PathParam(r, "/api/simulations/manual/", "/trade") extracts the {id} part.
func PathParam(r *http.Request, prefix, suffix string) string {
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := path[len(prefix):]
	if suffix != "" {
		idx := strings.Index(rest, suffix)
		if idx < 0 {
			return rest
		}
		return rest[:idx]
	}
	// No suffix: return up to the next /
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}
