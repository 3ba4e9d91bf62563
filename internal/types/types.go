// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// handlers, form, storage and users all import types without depending
// on each other.
package types

import "time"

// Registration is the form as submitted by the client. Every field is the
// raw string the user typed; validation happens in package form.
type Registration struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Birth      string `json:"birth"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// User is an accepted registration as persisted.
//
// The validate tags re-check the record right before it is written. The
// identity, postalcode and emailshape tags are registered by
// validation.RegisterTags; datetime is a go-playground builtin.
type User struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"firstName"  validate:"required,identity"`
	LastName   string    `json:"lastName"   validate:"required,identity"`
	Email      string    `json:"email"      validate:"required,emailshape"`
	Birth      string    `json:"birth"      validate:"required,datetime=2006-01-02"`
	City       string    `json:"city"       validate:"required,identity"`
	PostalCode string    `json:"postalCode" validate:"required,postalcode"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RemoteUser is the record shape of the remote collection endpoint.
type RemoteUser struct {
	ID      int64         `json:"id,omitempty"`
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Address RemoteAddress `json:"address"`
}

// RemoteAddress is the nested address of a RemoteUser.
type RemoteAddress struct {
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

// ListQuery holds the query string of GET /api/users. The json names are
// the query parameter names and are what validation errors report.
type ListQuery struct {
	Search string `json:"q"     validate:"max=100"`
	Order  string `json:"order" validate:"omitempty,oneof=asc desc"`
}
