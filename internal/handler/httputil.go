package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/matthewbaird/formforge/internal/dbc"
	"github.com/matthewbaird/formforge/internal/diagnostic"
	"github.com/matthewbaird/formforge/internal/pipeline"
	"github.com/matthewbaird/formforge/internal/project"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 8 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error       string                  `json:"error"`
	Code        string                  `json:"code"`
	Diagnostics *diagnostic.Diagnostics `json:"diagnostics,omitempty"`
}

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("writeJSON encode error")
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: message, Code: code})
}

// readBody returns the request body, rejecting empty and oversized bodies.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	defer r.Body.Close()
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "reading request body: "+err.Error())
		return nil, false
	}
	if len(b) == 0 {
		writeError(w, http.StatusBadRequest, "EMPTY_BODY", "request body is required")
		return nil, false
	}
	return b, true
}

// generationErrorToHTTP maps pipeline and project errors to HTTP responses.
func generationErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var verr *pipeline.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:       err.Error(),
			Code:        "VALIDATION_ERROR",
			Diagnostics: &verr.Diagnostics,
		})
	case errors.Is(err, project.ErrInvalidProject):
		writeError(w, http.StatusUnprocessableEntity, "SCHEMA_VIOLATION", err.Error())
	case errors.Is(err, dbc.ErrMissingMainObject):
		writeError(w, http.StatusUnprocessableEntity, "MISSING_MAIN_OBJECT", err.Error())
	case errors.Is(err, dbc.ErrNoFields):
		writeError(w, http.StatusUnprocessableEntity, "NO_FIELDS", err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
