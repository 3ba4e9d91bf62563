// Package validation is the registration core: the age calculator and the
// field validators. Everything here is pure. Invalid user input is an
// expected outcome and comes back as a ValidationError value, never a panic.
package validation

import "errors"

// ErrorCode is the stable, locale-independent identifier of a failure kind.
type ErrorCode string

const (
	CodeMissingParam         ErrorCode = "MISSING_PARAM"
	CodeInvalidFormat        ErrorCode = "INVALID_FORMAT"
	CodeMissingBirthProperty ErrorCode = "MISSING_BIRTH_PROPERTY"
	CodeInvalidBirthDate     ErrorCode = "INVALID_BIRTH_DATE"
	CodeAgeTooYoung          ErrorCode = "AGE_TOO_YOUNG"
	CodeInvalidPostalCode    ErrorCode = "INVALID_POSTAL_CODE"
	CodeInvalidIdentity      ErrorCode = "INVALID_IDENTITY"
	CodeInvalidLength        ErrorCode = "INVALID_LENGTH"
	CodeXSSDetected          ErrorCode = "XSS_DETECTED"
	CodeInvalidEmail         ErrorCode = "INVALID_EMAIL"
)

// ValidationError is a single failed check. It is a plain value: two checks
// of the same input produce equal errors.
type ValidationError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Message
}

func newError(code ErrorCode, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// AsValidationError extracts a ValidationError from err, if it carries one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr ValidationError
	if errors.As(err, &verr) {
		return &verr, true
	}
	var pverr *ValidationError
	if errors.As(err, &pverr) && pverr != nil {
		return pverr, true
	}
	return nil, false
}
