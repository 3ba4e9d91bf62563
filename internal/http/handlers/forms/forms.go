// Package forms serves live validation of the registration form: the whole
// form, one field at a time as the user types, and reading back the errors
// mirrored for the current form session.
package forms

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/registration-api/internal/form"
	"github.com/aanand-mishra/registration-api/internal/http/handlers"
	"github.com/aanand-mishra/registration-api/internal/http/session"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/aanand-mishra/registration-api/internal/utils/response"
)

// Validation is the body of POST /api/form/validate.
type Validation struct {
	Valid       bool                           `json:"valid"`
	Submittable bool                           `json:"submittable"`
	Errors      map[string]response.FieldError `json:"errors"`
}

// FieldValue is the request body of POST /api/form/fields/{field}.
type FieldValue struct {
	Value string `json:"value"`
}

// FieldResult is the response body of POST /api/form/fields/{field}.
type FieldResult struct {
	Field string               `json:"field"`
	Valid bool                 `json:"valid"`
	Error *response.FieldError `json:"error,omitempty"`
}

// Mirrored is the body of GET /api/form/errors.
type Mirrored struct {
	Session string            `json:"session"`
	Errors  map[string]string `json:"errors"`
}

// Validate handles POST /api/form/validate
// Same body as POST /api/users; nothing is persisted. Always 200 when the
// body decodes: the verdict is in the payload.
func Validate(deps handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg types.Registration
		if err := handlers.DecodeJSON(w, r, &reg); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		orch, _ := deps.SessionForm(w, r)
		state := form.StateOf(reg)
		res, err := orch.Submit(r.Context(), state)
		if err != nil {
			deps.Logger.Warn("mirror form errors",
				slog.String("op", "forms.Validate"),
				slog.String("error", err.Error()))
		}
		deps.RecordFailures(res.Errors)

		response.WriteJSON(w, http.StatusOK, Validation{
			Valid:       res.Valid,
			Submittable: form.IsSubmitEligible(state, res.Errors),
			Errors:      response.FieldErrors("", res.Errors.ByName()).Fields,
		})
	}
}

// Field handles POST /api/form/fields/{field}
// {field} is one of firstName, lastName, email, birth, city, postalCode.
//
// Error responses:
//
//	404 Not Found    unknown field name
//	400 Bad Request  empty or malformed body
func Field(deps handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := form.ParseField(chi.URLParam(r, "field"))
		if err != nil {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
			return
		}

		var in FieldValue
		if err := handlers.DecodeJSON(w, r, &in); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		orch, _ := deps.SessionForm(w, r)
		verr, err := orch.CheckField(r.Context(), f, in.Value)
		if err != nil {
			deps.Logger.Warn("mirror field error",
				slog.String("op", "forms.Field"),
				slog.String("field", string(f)),
				slog.String("error", err.Error()))
		}

		out := FieldResult{Field: string(f), Valid: verr == nil}
		if verr != nil {
			deps.Metrics.IncValidationFailure(string(f), string(verr.Code))
			out.Error = &response.FieldError{Code: string(verr.Code), Message: verr.Message}
		}
		response.WriteJSON(w, http.StatusOK, out)
	}
}

// Errors handles GET /api/form/errors
// Returns the messages mirrored for the session, keyed "error_<field>".
func Errors(deps handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := session.ID(w, r)

		entries, err := deps.Errors.ForSession(id).Load(r.Context())
		if err != nil {
			deps.Logger.Error("load form errors",
				slog.String("op", "forms.Errors"),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(errors.New("form errors unavailable")))
			return
		}

		response.WriteJSON(w, http.StatusOK, Mirrored{Session: id, Errors: entries})
	}
}
