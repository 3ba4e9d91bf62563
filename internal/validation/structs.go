package validation

import (
	"fmt"
	"reflect"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"

	"github.com/aanand-mishra/registration-api/internal/i18n"
)

// NewStructValidator returns a go-playground validator with the field
// validator tags registered and every tag message translated into the
// catalog's locale.
//
// Translations are added to the catalog's translator, so call this once per
// catalog.
func NewStructValidator(catalog *i18n.Catalog, v *Validator) (*validator.Validate, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so errors line up with the request.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := RegisterTags(validate, v); err != nil {
		return nil, err
	}

	trans := catalog.Translator()

	var err error
	switch catalog.Locale() {
	case i18n.FR:
		err = fr_translations.RegisterDefaultTranslations(validate, trans)
	default:
		err = en_translations.RegisterDefaultTranslations(validate, trans)
	}
	if err != nil {
		return nil, fmt.Errorf("register default translations: %w", err)
	}

	// Custom tags reuse the message the field validator produced.
	custom := map[string]func(string) *ValidationError{
		TagIdentity:   v.ValidateIdentity,
		TagPostalCode: v.ValidatePostalCode,
		TagEmail:      v.ValidateEmail,
	}
	for tag, check := range custom {
		check := check
		err := validate.RegisterTranslation(tag, trans,
			func(ut.Translator) error { return nil },
			func(_ ut.Translator, fe validator.FieldError) string {
				value, _ := fe.Value().(string)
				if verr := check(value); verr != nil {
					return fe.Field() + ": " + verr.Message
				}
				return fe.Error()
			},
		)
		if err != nil {
			return nil, fmt.Errorf("register %q translation: %w", tag, err)
		}
	}

	return validate, nil
}
