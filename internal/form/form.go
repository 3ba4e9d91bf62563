// Package form drives validation of the registration form: single fields as
// the user types, the whole form on submit, and the submit-eligibility rule.
//
// Field outcomes can be mirrored into an ErrorStore keyed "error_<field>" so
// a reloaded form can show the errors it had before.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aanand-mishra/registration-api/internal/i18n"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/aanand-mishra/registration-api/internal/validation"
)

// Field names a form input.
type Field string

const (
	FieldFirstName  Field = "firstName"
	FieldLastName   Field = "lastName"
	FieldEmail      Field = "email"
	FieldBirth      Field = "birth"
	FieldCity       Field = "city"
	FieldPostalCode Field = "postalCode"
)

// Fields lists every form field in display order.
var Fields = []Field{FieldFirstName, FieldLastName, FieldEmail, FieldBirth, FieldCity, FieldPostalCode}

// ErrUnknownField is returned by ParseField for names outside Fields.
var ErrUnknownField = errors.New("unknown form field")

// ParseField maps an external field name onto a Field.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Key is the side-channel key the field's error is mirrored under.
func (f Field) Key() string { return "error_" + string(f) }

// State is the raw value of each field as typed by the user.
type State map[Field]string

// StateOf flattens a registration request into form state.
func StateOf(r types.Registration) State {
	return State{
		FieldFirstName:  r.FirstName,
		FieldLastName:   r.LastName,
		FieldEmail:      r.Email,
		FieldBirth:      r.Birth,
		FieldCity:       r.City,
		FieldPostalCode: r.PostalCode,
	}
}

// Registration converts the state back into the request shape.
func (s State) Registration() types.Registration {
	return types.Registration{
		FirstName:  s[FieldFirstName],
		LastName:   s[FieldLastName],
		Email:      s[FieldEmail],
		Birth:      s[FieldBirth],
		City:       s[FieldCity],
		PostalCode: s[FieldPostalCode],
	}
}

// Errors maps a field to its failure. A nil entry means the same as no entry.
type Errors map[Field]*validation.ValidationError

// Empty reports whether no field carries an error.
func (e Errors) Empty() bool {
	for _, verr := range e {
		if verr != nil {
			return false
		}
	}
	return true
}

// Messages returns the non-nil errors as field name to message.
func (e Errors) Messages() map[string]string {
	out := make(map[string]string, len(e))
	for f, verr := range e {
		if verr != nil {
			out[string(f)] = verr.Message
		}
	}
	return out
}

// ByName returns the non-nil errors keyed by field name.
func (e Errors) ByName() map[string]*validation.ValidationError {
	out := make(map[string]*validation.ValidationError, len(e))
	for f, verr := range e {
		if verr != nil {
			out[string(f)] = verr
		}
	}
	return out
}

// Result is the outcome of a whole-form validation.
type Result struct {
	Valid  bool
	Errors Errors
}

// ErrorStore is the side channel field errors are mirrored into.
type ErrorStore interface {
	Set(ctx context.Context, key, message string) error
	Clear(ctx context.Context, key string) error
}

// Orchestrator combines the field validators and the age calculator.
type Orchestrator struct {
	validator  *validation.Validator
	calculator *validation.Calculator
	catalog    *i18n.Catalog
	store      ErrorStore
}

func New(v *validation.Validator, calc *validation.Calculator, catalog *i18n.Catalog) *Orchestrator {
	return &Orchestrator{validator: v, calculator: calc, catalog: catalog}
}

// WithStore returns a copy of o that mirrors outcomes into store.
func (o *Orchestrator) WithStore(store ErrorStore) *Orchestrator {
	cp := *o
	cp.store = store
	return &cp
}

// ValidateField runs the validator matching f. It panics for a Field that
// is not one of Fields; external names go through ParseField first.
func (o *Orchestrator) ValidateField(f Field, value string) *validation.ValidationError {
	switch f {
	case FieldFirstName, FieldLastName, FieldCity:
		return o.validator.ValidateIdentity(value)
	case FieldEmail:
		return o.validator.ValidateEmail(value)
	case FieldPostalCode:
		return o.validator.ValidatePostalCode(value)
	case FieldBirth:
		return o.validateBirth(value)
	default:
		panic(fmt.Sprintf("form: no validator for field %q", f))
	}
}

func (o *Orchestrator) validateBirth(value string) *validation.ValidationError {
	if strings.TrimSpace(value) == "" {
		return &validation.ValidationError{
			Code:    validation.CodeMissingBirthProperty,
			Message: o.catalog.Text(i18n.BirthRequired),
		}
	}

	if _, err := o.calculator.CalculateAge(validation.Person{Birth: ParseBirth(value)}); err != nil {
		if verr, ok := validation.AsValidationError(err); ok {
			return verr
		}
		return &validation.ValidationError{Code: validation.CodeInvalidBirthDate, Message: err.Error()}
	}
	return nil
}

// ValidateForm validates every field, even after an earlier one failed.
// Fields without an error are absent from Result.Errors.
func (o *Orchestrator) ValidateForm(state State) Result {
	errs := make(Errors)
	for _, f := range Fields {
		if verr := o.ValidateField(f, state[f]); verr != nil {
			errs[f] = verr
		}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// IsSubmitEligible reports whether every field is filled in and errs holds
// no error.
func IsSubmitEligible(state State, errs Errors) bool {
	for _, f := range Fields {
		if state[f] == "" {
			return false
		}
	}
	return errs.Empty()
}

// CheckField validates one field and mirrors the outcome: the error message
// is stored on failure and removed on success.
func (o *Orchestrator) CheckField(ctx context.Context, f Field, value string) (*validation.ValidationError, error) {
	verr := o.ValidateField(f, value)
	if err := o.mirror(ctx, f, verr); err != nil {
		return verr, err
	}
	return verr, nil
}

// Submit validates the whole form and mirrors every field outcome. On
// success all of the form's keys are cleared from the store.
func (o *Orchestrator) Submit(ctx context.Context, state State) (Result, error) {
	res := o.ValidateForm(state)

	var errs []error
	for _, f := range Fields {
		if err := o.mirror(ctx, f, res.Errors[f]); err != nil {
			errs = append(errs, err)
		}
	}
	return res, errors.Join(errs...)
}

func (o *Orchestrator) mirror(ctx context.Context, f Field, verr *validation.ValidationError) error {
	if o.store == nil {
		return nil
	}
	if verr != nil {
		if err := o.store.Set(ctx, f.Key(), verr.Message); err != nil {
			return fmt.Errorf("mirror %s: %w", f, err)
		}
		return nil
	}
	if err := o.store.Clear(ctx, f.Key()); err != nil {
		return fmt.Errorf("clear %s: %w", f, err)
	}
	return nil
}

var birthLayouts = []string{"2006-01-02", "01/02/2006", time.RFC3339}

// ParseBirth reads a birth date as sent by a date input. Anything that is
// not a real calendar date comes back as the zero time, which the age
// calculator reports as an impossible date.
func ParseBirth(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range birthLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
