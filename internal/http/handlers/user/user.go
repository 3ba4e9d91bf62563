// Package user contains the HTTP handlers for the registered-user resource.
package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/registration-api/internal/form"
	"github.com/aanand-mishra/registration-api/internal/http/handlers"
	"github.com/aanand-mishra/registration-api/internal/i18n"
	"github.com/aanand-mishra/registration-api/internal/metrics"
	"github.com/aanand-mishra/registration-api/internal/storage"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/aanand-mishra/registration-api/internal/users"
	"github.com/aanand-mishra/registration-api/internal/utils/response"
)

// Created is the 201 body of POST /api/users.
type Created struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// List is the body of GET /api/users.
type List struct {
	Count int          `json:"count"`
	Text  string       `json:"text"`
	Users []types.User `json:"users"`
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/users
// Validates a registration and persists it.
//
// Request body (JSON):
//
//	{ "firstName": "Jean", "lastName": "Dupont", "email": "jean@test.com",
//	  "birth": "1990-05-15", "city": "Paris", "postalCode": "75001" }
//
// Success response (201 Created):
//
//	{ "id": 1, "message": "Utilisateur enregistré avec succès !" }
//
// Error responses:
//
//	400 Bad Request  empty body, malformed JSON, invalid fields, duplicate email
//	502 Bad Gateway  remote store failed or unreachable
//	500 Internal     any other store error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(deps handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := deps.Logger.With(slog.String("op", "user.New"))

		var reg types.Registration
		if err := handlers.DecodeJSON(w, r, &reg); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// ── Step 1: field validation, mirrored into the form session ──
		orch, _ := deps.SessionForm(w, r)
		state := form.StateOf(reg)
		res, err := orch.Submit(r.Context(), state)
		if err != nil {
			log.Warn("mirror form errors", slog.String("error", err.Error()))
		}
		if !res.Valid {
			deps.RecordFailures(res.Errors)
			deps.Metrics.IncRegistration(metrics.OutcomeInvalid)
			response.WriteJSON(w, http.StatusBadRequest,
				response.FieldErrors(deps.Catalog.Text(i18n.FormInvalid), res.Errors.ByName()))
			return
		}

		// ── Step 2: re-check the record about to be persisted ─────────
		u := toUser(reg)
		if err := deps.Validate.Struct(u); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				deps.Metrics.IncRegistration(metrics.OutcomeInvalid)
				response.WriteJSON(w, http.StatusBadRequest,
					response.ValidationError(verrs, deps.Catalog.Translator()))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		// ── Step 3: persist ───────────────────────────────────────────
		start := time.Now()
		id, err := deps.Store.CreateUser(r.Context(), u)
		deps.Metrics.ObserveStore("create", start)
		if err != nil {
			writeStoreError(w, deps, log, err)
			return
		}

		deps.Metrics.IncRegistration(metrics.OutcomeCreated)
		log.Info("user registered", slog.Int64("id", id))

		response.WriteJSON(w, http.StatusCreated, Created{
			ID:      id,
			Message: deps.Catalog.Text(i18n.Registered),
		})
	}
}

// toUser builds the persisted record. Birth is normalised to YYYY-MM-DD
// whatever layout the form sent.
func toUser(reg types.Registration) types.User {
	return types.User{
		FirstName:  strings.TrimSpace(reg.FirstName),
		LastName:   strings.TrimSpace(reg.LastName),
		Email:      strings.TrimSpace(reg.Email),
		Birth:      form.ParseBirth(reg.Birth).Format(time.DateOnly),
		City:       strings.TrimSpace(reg.City),
		PostalCode: strings.TrimSpace(reg.PostalCode),
	}
}

func writeStoreError(w http.ResponseWriter, deps handlers.Deps, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrDuplicateEmail):
		deps.Metrics.IncRegistration(metrics.OutcomeDuplicate)
		response.WriteJSON(w, http.StatusBadRequest,
			response.Message(deps.Catalog.Text(i18n.EmailDuplicate)))
	case errors.Is(err, storage.ErrServer), errors.Is(err, storage.ErrNetwork):
		deps.Metrics.IncRegistration(metrics.OutcomeError)
		log.Error("user store unavailable", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusBadGateway,
			response.Message(deps.Catalog.Text(i18n.RemoteUnavailable)))
	default:
		deps.Metrics.IncRegistration(metrics.OutcomeError)
		log.Error("user store failed", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError,
			response.Message(deps.Catalog.Text(i18n.ServerError)))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/users?q=<search>&order=asc|desc
//
// q filters on first name, last name, email and city, ignoring case.
// order sorts by "lastName firstName"; without it users come back in
// registration order.
//
// Success response (200 OK):
//
//	{ "count": 2, "text": "2 utilisateurs inscrits", "users": [ … ] }
//
// ─────────────────────────────────────────────────────────────────────────────
func GetList(deps handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := types.ListQuery{
			Search: r.URL.Query().Get("q"),
			Order:  r.URL.Query().Get("order"),
		}
		if err := deps.Validate.Struct(q); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.ValidationError(verrs, deps.Catalog.Translator()))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		start := time.Now()
		list, err := deps.Store.GetUsers(r.Context())
		deps.Metrics.ObserveStore("list", start)
		if err != nil {
			writeStoreError(w, deps, deps.Logger.With(slog.String("op", "user.GetList")), err)
			return
		}

		list = users.Filter(list, q.Search)
		if q.Order != "" {
			list = users.SortByName(list, users.Order(q.Order), deps.Catalog.Locale())
		}

		count := users.Count(list)
		response.WriteJSON(w, http.StatusOK, List{
			Count: count,
			Text:  users.FormatCountText(deps.Catalog, count),
			Users: list,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/users/{id}
//
// Error responses:
//
//	400 Bad Request  id is not an integer
//	404 Not Found    no such user
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(deps handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Message("invalid id: "+chi.URLParam(r, "id")))
			return
		}

		start := time.Now()
		u, err := deps.Store.GetUserByID(r.Context(), id)
		deps.Metrics.ObserveStore("get", start)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
			return
		}
		if err != nil {
			writeStoreError(w, deps, deps.Logger.With(slog.String("op", "user.GetByID")), err)
			return
		}

		response.WriteJSON(w, http.StatusOK, u)
	}
}
