package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/aanand-mishra/registration-api/internal/errorstore"
	"github.com/aanand-mishra/registration-api/internal/form"
	"github.com/aanand-mishra/registration-api/internal/http/handlers"
	"github.com/aanand-mishra/registration-api/internal/http/handlers/forms"
	"github.com/aanand-mishra/registration-api/internal/http/handlers/user"
	"github.com/aanand-mishra/registration-api/internal/http/session"
	"github.com/aanand-mishra/registration-api/internal/i18n"
	"github.com/aanand-mishra/registration-api/internal/metrics"
	"github.com/aanand-mishra/registration-api/internal/storage"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/aanand-mishra/registration-api/internal/users"
	"github.com/aanand-mishra/registration-api/internal/utils/response"
	"github.com/aanand-mishra/registration-api/internal/validation"
)

// fakeStore is an in-memory storage.Storage with an injectable failure.
type fakeStore struct {
	mu    sync.Mutex
	list  []types.User
	fail  error
	calls int
}

func (f *fakeStore) CreateUser(_ context.Context, u types.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return 0, f.fail
	}
	if users.Exists(u.Email, f.list) {
		return 0, storage.ErrDuplicateEmail
	}
	u.ID = int64(len(f.list) + 1)
	f.list = users.AddToList(u, f.list)
	return u.ID, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.list {
		if u.ID == id {
			return u, nil
		}
	}
	return types.User{}, fmt.Errorf("%w: id %d", storage.ErrNotFound, id)
}

func (f *fakeStore) GetUsers(context.Context) ([]types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	return append([]types.User{}, f.list...), nil
}

type RouterSuite struct {
	suite.Suite
	store   *fakeStore
	handler http.Handler
	session string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	catalog := i18n.MustNew(i18n.FR)
	v := validation.NewValidator(catalog)
	frozen := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	calc := validation.NewCalculator(catalog,
		validation.WithClock(func() time.Time { return frozen }),
		validation.WithMinimumAge(18),
	)
	validate, err := validation.NewStructValidator(catalog, v)
	s.Require().NoError(err)

	reg := prometheus.NewRegistry()
	s.store = &fakeStore{}
	s.session = uuid.NewString()
	s.handler = New(handlers.Deps{
		Store:    s.store,
		Form:     form.New(v, calc, catalog),
		Errors:   errorstore.NewMemory(),
		Validate: validate,
		Catalog:  catalog,
		Metrics:  metrics.New(reg),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, reg)
}

func (s *RouterSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(session.Header, s.session)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](s *RouterSuite, rec *httptest.ResponseRecorder) T {
	var out T
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const validBody = `{
	"firstName": "Jean", "lastName": "Dupont", "email": "jean.dupont@test.com",
	"birth": "1990-05-15", "city": "Paris", "postalCode": "75001"
}`

func body(overrides map[string]string) string {
	m := map[string]string{
		"firstName": "Jean", "lastName": "Dupont", "email": "jean.dupont@test.com",
		"birth": "1990-05-15", "city": "Paris", "postalCode": "75001",
	}
	for k, v := range overrides {
		m[k] = v
	}
	raw, _ := json.Marshal(m)
	return string(raw)
}

func (s *RouterSuite) TestRegister() {
	rec := s.do(http.MethodPost, "/api/users", validBody)
	s.Equal(http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[user.Created](s, rec)
	s.Equal(int64(1), created.ID)
	s.Equal("Utilisateur enregistré avec succès !", created.Message)

	s.Require().Len(s.store.list, 1)
	s.Equal("1990-05-15", s.store.list[0].Birth)
}

func (s *RouterSuite) TestRegisterInvalidFields() {
	rec := s.do(http.MethodPost, "/api/users", body(map[string]string{
		"email":      "invalid-email",
		"postalCode": "123",
		"birth":      "2015-01-01",
	}))
	s.Equal(http.StatusBadRequest, rec.Code)

	resp := decode[response.Response](s, rec)
	s.Equal(response.StatusError, resp.Status)
	s.Equal("Le formulaire contient des erreurs.", resp.Error)
	s.Len(resp.Fields, 3)
	s.Equal(string(validation.CodeInvalidEmail), resp.Fields["email"].Code)
	s.Equal(string(validation.CodeInvalidPostalCode), resp.Fields["postalCode"].Code)
	s.Equal(string(validation.CodeAgeTooYoung), resp.Fields["birth"].Code)
	s.Zero(s.store.calls)
}

func (s *RouterSuite) TestRegisterBadBodies() {
	s.Run("empty", func() {
		rec := s.do(http.MethodPost, "/api/users", "")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("request body is empty", decode[response.Response](s, rec).Error)
	})
	s.Run("non-string field", func() {
		rec := s.do(http.MethodPost, "/api/users", `{"firstName": 42}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *RouterSuite) TestRegisterDuplicate() {
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/users", validBody).Code)

	rec := s.do(http.MethodPost, "/api/users", body(map[string]string{"email": "JEAN.DUPONT@test.com"}))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Cet email est déjà utilisé.", decode[response.Response](s, rec).Error)
}

func (s *RouterSuite) TestRegisterStoreFailures() {
	tests := []struct {
		err  error
		code int
	}{
		{storage.ErrServer, http.StatusBadGateway},
		{storage.ErrNetwork, http.StatusBadGateway},
		{fmt.Errorf("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		s.Run(tt.err.Error(), func() {
			s.store.fail = tt.err
			rec := s.do(http.MethodPost, "/api/users", validBody)
			s.Equal(tt.code, rec.Code)
			s.NotContains(rec.Body.String(), tt.err.Error())
		})
	}
}

func (s *RouterSuite) TestList() {
	for _, b := range []string{
		body(map[string]string{"firstName": "Alice", "lastName": "Martin", "email": "alice@test.com", "city": "Lyon"}),
		body(map[string]string{"firstName": "Bob", "lastName": "Bernard", "email": "bob@test.com"}),
	} {
		s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/users", b).Code)
	}

	s.Run("all, in registration order", func() {
		list := decode[user.List](s, s.do(http.MethodGet, "/api/users", ""))
		s.Equal(2, list.Count)
		s.Equal("2 utilisateurs inscrits", list.Text)
		s.Equal("Alice", list.Users[0].FirstName)
	})

	s.Run("sorted", func() {
		list := decode[user.List](s, s.do(http.MethodGet, "/api/users?order=asc", ""))
		s.Equal("Bob", list.Users[0].FirstName)
	})

	s.Run("filtered", func() {
		list := decode[user.List](s, s.do(http.MethodGet, "/api/users?q=LYON", ""))
		s.Equal(1, list.Count)
		s.Equal("1 utilisateur inscrit", list.Text)
	})

	s.Run("bad order", func() {
		rec := s.do(http.MethodGet, "/api/users?order=sideways", "")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("oneof", decode[response.Response](s, rec).Fields["order"].Code)
	})
}

func (s *RouterSuite) TestListEmpty() {
	list := decode[user.List](s, s.do(http.MethodGet, "/api/users", ""))
	s.Equal(0, list.Count)
	s.Equal("Aucun utilisateur inscrit", list.Text)
	s.NotNil(list.Users)
}

func (s *RouterSuite) TestGetByID() {
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/users", validBody).Code)

	rec := s.do(http.MethodGet, "/api/users/1", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("jean.dupont@test.com", decode[types.User](s, rec).Email)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/users/9", "").Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/users/abc", "").Code)
}

func (s *RouterSuite) TestFormValidate() {
	s.Run("valid", func() {
		out := decode[forms.Validation](s, s.do(http.MethodPost, "/api/form/validate", validBody))
		s.True(out.Valid)
		s.True(out.Submittable)
		s.Empty(out.Errors)
	})

	s.Run("invalid", func() {
		out := decode[forms.Validation](s, s.do(http.MethodPost, "/api/form/validate", body(map[string]string{"city": "<script>"})))
		s.False(out.Valid)
		s.False(out.Submittable)
		s.Equal(string(validation.CodeXSSDetected), out.Errors["city"].Code)
	})

	s.Run("nothing persisted", func() {
		s.Zero(s.store.calls)
	})
}

func (s *RouterSuite) TestFieldMirroring() {
	rec := s.do(http.MethodPost, "/api/form/fields/email", `{"value": "nope"}`)
	s.Equal(http.StatusOK, rec.Code)
	out := decode[forms.FieldResult](s, rec)
	s.False(out.Valid)
	s.Require().NotNil(out.Error)
	s.Equal(string(validation.CodeInvalidEmail), out.Error.Code)

	mirrored := decode[forms.Mirrored](s, s.do(http.MethodGet, "/api/form/errors", ""))
	s.Equal(s.session, mirrored.Session)
	s.Equal(out.Error.Message, mirrored.Errors["error_email"])

	out = decode[forms.FieldResult](s, s.do(http.MethodPost, "/api/form/fields/email", `{"value": "ok@test.com"}`))
	s.True(out.Valid)
	s.Nil(out.Error)

	mirrored = decode[forms.Mirrored](s, s.do(http.MethodGet, "/api/form/errors", ""))
	s.Empty(mirrored.Errors)
}

func (s *RouterSuite) TestFieldUnknown() {
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/form/fields/nickname", `{"value": "x"}`).Code)
}

func (s *RouterSuite) TestMetrics() {
	s.do(http.MethodPost, "/api/form/fields/postalCode", `{"value": "1"}`)

	rec := s.do(http.MethodGet, "/metrics", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `registration_validation_failures_total{code="INVALID_POSTAL_CODE",field="postalCode"} 1`)
}
