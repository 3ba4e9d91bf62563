// Package handlers holds what the user and forms handlers share: their
// dependencies and the request decoding they both do.
//
// HANDLER PATTERN:
// ────────────────
// Every handler is a factory that receives its dependencies once at
// startup and returns the http.HandlerFunc the router calls per request:
//
//	r.Post("/api/users", user.New(deps))
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/registration-api/internal/errorstore"
	"github.com/aanand-mishra/registration-api/internal/form"
	"github.com/aanand-mishra/registration-api/internal/http/session"
	"github.com/aanand-mishra/registration-api/internal/i18n"
	"github.com/aanand-mishra/registration-api/internal/metrics"
	"github.com/aanand-mishra/registration-api/internal/storage"
)

// ErrEmptyBody is returned by DecodeJSON for a request without a body.
var ErrEmptyBody = errors.New("request body is empty")

// maxBodyBytes caps a decoded request body.
const maxBodyBytes = 1 << 20

// Deps is everything a handler may need.
type Deps struct {
	Store    storage.Storage
	Form     *form.Orchestrator
	Errors   errorstore.Provider
	Validate *validator.Validate
	Catalog  *i18n.Catalog
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// DecodeJSON reads the request body into v. Values of the wrong JSON type
// (a number where a string is expected) are decode errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	if err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// SessionForm returns the orchestrator bound to the request's form
// session, plus the session id.
func (d Deps) SessionForm(w http.ResponseWriter, r *http.Request) (*form.Orchestrator, string) {
	id := session.ID(w, r)
	return d.Form.WithStore(d.Errors.ForSession(id)), id
}

// RecordFailures counts every field error in errs.
func (d Deps) RecordFailures(errs form.Errors) {
	for f, verr := range errs {
		if verr != nil {
			d.Metrics.IncValidationFailure(string(f), string(verr.Code))
		}
	}
}
