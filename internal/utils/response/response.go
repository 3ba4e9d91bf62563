// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client. Rather
// than repeating header, status and encode in every handler, we centralise
// them here, and every error a client can see has the same envelope.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/registration-api/internal/validation"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a user, a list, an id…).
// Error responses always look like:
//
//	{ "status": "error", "error": "Le formulaire contient des erreurs.",
//	  "fields": { "email": { "code": "INVALID_EMAIL", "message": "…" } } }
//
// fields is present only when the failure is tied to named inputs.
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string                `json:"status"`
	Error  string                `json:"error"`
	Fields map[string]FieldError `json:"fields,omitempty"`
}

// FieldError is one rejected input.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write response", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// GeneralError wraps any Go error into our standard Response shape.
// Use this for unexpected errors and for decode failures.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// Message is GeneralError for an already localized sentence.
func Message(msg string) Response {
	return Response{Status: StatusError, Error: msg}
}

// ─────────────────────────────────────────────────────────────────────────────
// FieldErrors builds the envelope for a rejected form. message is the
// summary sentence; errs maps the input name to its ValidationError. Nil
// entries are skipped.
// ─────────────────────────────────────────────────────────────────────────────
func FieldErrors(message string, errs map[string]*validation.ValidationError) Response {
	fields := make(map[string]FieldError, len(errs))
	for name, verr := range errs {
		if verr == nil {
			continue
		}
		fields[name] = FieldError{Code: string(verr.Code), Message: verr.Message}
	}
	return Response{Status: StatusError, Error: message, Fields: fields}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts go-playground field errors into a Response,
// each message translated through trans. The summary joins every message
// with ", "; fields carries them keyed by JSON name with the failed tag as
// the code.
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors, trans ut.Translator) Response {
	messages := make([]string, 0, len(errs))
	fields := make(map[string]FieldError, len(errs))

	for _, e := range errs {
		msg := e.Translate(trans)
		messages = append(messages, msg)
		if _, seen := fields[e.Field()]; !seen {
			fields[e.Field()] = FieldError{Code: e.Tag(), Message: msg}
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(messages, ", "),
		Fields: fields,
	}
}
