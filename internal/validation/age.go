package validation

import (
	"strconv"
	"time"

	"github.com/aanand-mishra/registration-api/internal/i18n"
)

// epoch is the earliest accepted birth date.
var epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// Person is the transient value handed to the calculator. Birth must hold a
// time.Time (or *time.Time); the zero time stands for a date that does not
// exist on the calendar, e.g. the result of parsing "1990-02-31".
type Person struct {
	Birth any `json:"birth"`
}

// Calculator turns a birth date into an age in whole years.
type Calculator struct {
	now        func() time.Time
	minimumAge int
	catalog    *i18n.Catalog
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) CalculatorOption {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMinimumAge enables the minimum-age gate. Zero or less disables it.
func WithMinimumAge(years int) CalculatorOption {
	return func(c *Calculator) {
		if years < 0 {
			years = 0
		}
		c.minimumAge = years
	}
}

// NewCalculator returns a calculator with no minimum-age gate unless
// WithMinimumAge says otherwise.
func NewCalculator(catalog *i18n.Catalog, opts ...CalculatorOption) *Calculator {
	c := &Calculator{now: time.Now, catalog: catalog}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MinimumAge reports the active gate; 0 means none.
func (c *Calculator) MinimumAge() int { return c.minimumAge }

// CalculateAge returns the age of p in whole years.
//
// p may be a Person, a *Person or a decoded JSON object with a "birth" key.
// Checks run in a fixed order and the first failure wins:
//
//  1. p is nil                           MISSING_PARAM
//  2. p is not a person-like value       INVALID_FORMAT
//  3. birth is absent                    MISSING_BIRTH_PROPERTY
//  4. birth is not a time value          INVALID_BIRTH_DATE
//  5. birth is the zero time             INVALID_BIRTH_DATE
//  6. birth is after now                 INVALID_BIRTH_DATE
//  7. birth is before 1970-01-01 UTC     INVALID_BIRTH_DATE
//  8. age is under the minimum, if set   AGE_TOO_YOUNG
//
// The returned error is always a ValidationError.
func (c *Calculator) CalculateAge(p any) (int, error) {
	raw, verr := c.birthOf(p)
	if verr != nil {
		return 0, *verr
	}

	var birth time.Time
	switch b := raw.(type) {
	case time.Time:
		birth = b
	case *time.Time:
		birth = *b
	default:
		return 0, *newError(CodeInvalidBirthDate, c.catalog.Text(i18n.BirthNotDate))
	}

	if birth.IsZero() {
		return 0, *newError(CodeInvalidBirthDate, c.catalog.Text(i18n.BirthImpossible))
	}

	now := c.now().UTC()
	birth = birth.UTC()

	if birth.After(now) {
		return 0, *newError(CodeInvalidBirthDate, c.catalog.Text(i18n.BirthInFuture))
	}
	if birth.Before(epoch) {
		return 0, *newError(CodeInvalidBirthDate, c.catalog.Text(i18n.BirthTooOld))
	}

	age := wholeYears(birth, now)

	if c.minimumAge > 0 && age < c.minimumAge {
		return 0, *newError(CodeAgeTooYoung,
			c.catalog.Text(i18n.AgeTooYoung, strconv.Itoa(c.minimumAge)))
	}

	return age, nil
}

// birthOf unwraps the birth value from the accepted person shapes.
func (c *Calculator) birthOf(p any) (any, *ValidationError) {
	var birth any

	switch v := p.(type) {
	case nil:
		return nil, newError(CodeMissingParam, c.catalog.Text(i18n.MissingParam))
	case *Person:
		if v == nil {
			return nil, newError(CodeMissingParam, c.catalog.Text(i18n.MissingParam))
		}
		birth = v.Birth
	case Person:
		birth = v.Birth
	case map[string]any:
		birth = v["birth"]
	default:
		return nil, newError(CodeInvalidFormat, c.catalog.Text(i18n.InvalidFormat))
	}

	if birth == nil {
		return nil, newError(CodeMissingBirthProperty, c.catalog.Text(i18n.MissingBirthProperty))
	}
	if t, ok := birth.(*time.Time); ok && t == nil {
		return nil, newError(CodeMissingBirthProperty, c.catalog.Text(i18n.MissingBirthProperty))
	}

	return birth, nil
}

// wholeYears counts the birthdays between birth and now. A 29 February
// birthday falls on 1 March in common years.
func wholeYears(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}
