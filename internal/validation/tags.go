package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Struct tags backed by the field validators, for use on persisted shapes:
//
//	FirstName string `validate:"required,identity"`
const (
	TagIdentity   = "identity"
	TagPostalCode = "postalcode"
	TagEmail      = "emailshape"
)

// RegisterTags binds the field validators to go-playground struct tags so a
// record about to be persisted can be re-checked with validate.Struct.
func RegisterTags(validate *validator.Validate, v *Validator) error {
	tags := map[string]func(string) *ValidationError{
		TagIdentity:   v.ValidateIdentity,
		TagPostalCode: v.ValidatePostalCode,
		TagEmail:      v.ValidateEmail,
	}

	for tag, check := range tags {
		check := check
		err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String()) == nil
		})
		if err != nil {
			return fmt.Errorf("register %q: %w", tag, err)
		}
	}
	return nil
}
