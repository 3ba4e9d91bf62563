package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aanand-mishra/registration-api/internal/i18n"
)

// PostalFormat selects the postal code policy of a deployment.
type PostalFormat string

const (
	// PostalFive accepts exactly five digits, e.g. "75001".
	PostalFive PostalFormat = "five"
	// PostalExtended accepts five digits, a hyphen and four digits, e.g. "75001-1234".
	PostalExtended PostalFormat = "extended"
)

// ParsePostalFormat maps a config value onto a PostalFormat.
func ParsePostalFormat(s string) (PostalFormat, error) {
	switch PostalFormat(strings.ToLower(strings.TrimSpace(s))) {
	case PostalFive, "5":
		return PostalFive, nil
	case PostalExtended, "5-4":
		return PostalExtended, nil
	default:
		return "", fmt.Errorf("unknown postal code format %q", s)
	}
}

var (
	htmlTagPattern        = regexp.MustCompile(`<[^>]+>`)
	identityPattern       = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ\s'-]+$`)
	postalFivePattern     = regexp.MustCompile(`^[0-9]{5}$`)
	postalExtendedPattern = regexp.MustCompile(`^[0-9]{5}-[0-9]{4}$`)
	emailPattern          = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Validator holds the field validation policy of a deployment. The methods
// are pure: same input, same result, no shared mutable state.
type Validator struct {
	catalog           *i18n.Catalog
	postal            PostalFormat
	identityMinLength int
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithPostalFormat picks the postal code policy. Default is PostalFive.
func WithPostalFormat(f PostalFormat) ValidatorOption {
	return func(v *Validator) { v.postal = f }
}

// WithIdentityMinLength turns on the length check for identity strings.
func WithIdentityMinLength(n int) ValidatorOption {
	return func(v *Validator) {
		if n < 0 {
			n = 0
		}
		v.identityMinLength = n
	}
}

func NewValidator(catalog *i18n.Catalog, opts ...ValidatorOption) *Validator {
	v := &Validator{catalog: catalog, postal: PostalFive}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// PostalFormat reports the active postal code policy.
func (v *Validator) PostalFormat() PostalFormat { return v.postal }

// ValidateIdentity checks a first name, last name or city.
func (v *Validator) ValidateIdentity(name string) *ValidationError {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return newError(CodeInvalidIdentity, v.catalog.Text(i18n.IdentityRequired))
	}

	if v.identityMinLength > 0 && utf8.RuneCountInString(trimmed) < v.identityMinLength {
		return newError(CodeInvalidLength,
			v.catalog.Text(i18n.IdentityTooShort, strconv.Itoa(v.identityMinLength)))
	}

	lower := strings.ToLower(name)
	if strings.Contains(lower, "<script") ||
		strings.Contains(lower, "</script>") ||
		htmlTagPattern.MatchString(name) {
		return newError(CodeXSSDetected, v.catalog.Text(i18n.IdentityXSS))
	}

	if !identityPattern.MatchString(name) {
		return newError(CodeInvalidIdentity, v.catalog.Text(i18n.IdentityCharset))
	}

	return nil
}

// ValidatePostalCode checks code against the configured postal policy.
func (v *Validator) ValidatePostalCode(code string) *ValidationError {
	if v.postal == PostalExtended {
		if !postalExtendedPattern.MatchString(code) {
			return newError(CodeInvalidPostalCode, v.catalog.Text(i18n.PostalExtended))
		}
		return nil
	}

	if !postalFivePattern.MatchString(code) {
		return newError(CodeInvalidPostalCode, v.catalog.Text(i18n.PostalFiveDigits))
	}
	return nil
}

// ValidateEmail checks for the local@domain.tld shape: one @, no whitespace,
// at least one dot after the @.
func (v *Validator) ValidateEmail(email string) *ValidationError {
	if !emailPattern.MatchString(email) {
		return newError(CodeInvalidEmail, v.catalog.Text(i18n.EmailInvalid))
	}
	return nil
}
