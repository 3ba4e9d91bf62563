// Package errorstore keeps the per-session mirror of form field errors.
//
// Each form session gets its own Store; a Store behaves like the browser's
// local storage the form used to write "error_<field>" entries into.
package errorstore

import "context"

// Store is one session's view of the mirror. It satisfies form.ErrorStore.
type Store interface {
	Set(ctx context.Context, key, message string) error
	Clear(ctx context.Context, key string) error
	Load(ctx context.Context) (map[string]string, error)
}

// Provider hands out the Store of a form session.
type Provider interface {
	ForSession(id string) Store
}
