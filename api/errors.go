/*
errors.go - Structured error envelope

PURPOSE:
  Every API error returns the same JSON shape:

    {"error": {"type": "...", "message": "...", "fields": [...]}}

  Types: VALIDATION_ERROR (422), NOT_FOUND (404), CONFLICT (409),
  SERVER_ERROR (500). Server errors log the real cause and hand the client a
  generic message.

SEE ALSO:
  - handlers.go: the handlers producing these envelopes
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// FieldError pinpoints one invalid request field. Validation responses carry
// ALL invalid fields at once, not fail-on-first.
type FieldError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type errorBody struct {
	Type    string       `json:"type"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeErrorEnvelope(w http.ResponseWriter, status int, errType, message string, fields []FieldError) {
	if fields == nil {
		fields = []FieldError{}
	}
	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Type:    errType,
		Message: message,
		Fields:  fields,
	}})
}

// writeValidationError writes a 422 with per-field details.
func writeValidationError(w http.ResponseWriter, fields ...FieldError) {
	writeErrorEnvelope(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", fields)
}

// writeValidationMessage writes a 422 with a bare message and no field list.
func writeValidationMessage(w http.ResponseWriter, message string) {
	writeErrorEnvelope(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, nil)
}

// writeNotFound writes a 404.
func writeNotFound(w http.ResponseWriter, message string) {
	writeErrorEnvelope(w, http.StatusNotFound, "NOT_FOUND", message, nil)
}

// writeConflict writes a 409.
func writeConflict(w http.ResponseWriter, message string) {
	writeErrorEnvelope(w, http.StatusConflict, "CONFLICT", message, nil)
}

// writeServerError logs the real error and writes a generic 500. Clients
// never see internal detail.
func writeServerError(w http.ResponseWriter, context string, err error) {
	log.Printf("%s: %v", context, err)
	writeErrorEnvelope(w, http.StatusInternalServerError, "SERVER_ERROR", "Something went wrong", nil)
}
