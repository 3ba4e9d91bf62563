package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromHeader(t *testing.T) {
	want := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(Header, want)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: uuid.NewString()})
	w := httptest.NewRecorder()

	assert.Equal(t, want, ID(w, r))
	assert.Empty(t, w.Header().Get(Header))
}

func TestIDFromCookie(t *testing.T) {
	want := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: want})
	w := httptest.NewRecorder()

	assert.Equal(t, want, ID(w, r))
	assert.Empty(t, w.Result().Cookies())
}

func TestIDGenerated(t *testing.T) {
	for name, r := range map[string]*http.Request{
		"nothing sent": httptest.NewRequest(http.MethodGet, "/", nil),
		"garbage header": func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set(Header, "../../etc/passwd")
			return r
		}(),
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			id := ID(w, r)

			_, err := uuid.Parse(id)
			require.NoError(t, err)
			assert.Equal(t, id, w.Header().Get(Header))

			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, CookieName, cookies[0].Name)
			assert.Equal(t, id, cookies[0].Value)
		})
	}
}
