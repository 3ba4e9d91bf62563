// Package session identifies the form session a request belongs to, so
// mirrored field errors survive a page reload.
package session

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	Header     = "X-Form-Session"
	CookieName = "form_session"
)

// ID returns the request's form session id. The X-Form-Session header wins
// over the form_session cookie; a value that is not a UUID is ignored.
// When neither carries one a new id is generated and handed back to the
// client in both the header and a cookie.
func ID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := parse(r.Header.Get(Header)); ok {
		return id
	}
	if c, err := r.Cookie(CookieName); err == nil {
		if id, ok := parse(c.Value); ok {
			return id
		}
	}

	id := uuid.NewString()
	w.Header().Set(Header, id)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func parse(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
