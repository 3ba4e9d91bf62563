package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/registration-api/internal/i18n"
)

func TestValidateIdentity(t *testing.T) {
	v := NewValidator(i18n.MustNew(i18n.FR))

	t.Run("valid names", func(t *testing.T) {
		for _, name := range []string{"Jean Dupont", "Anne-Marie", "Éloïse", "Jean-Marie García", "O'Macfly", "A"} {
			assert.Nil(t, v.ValidateIdentity(name), name)
		}
	})

	tests := []struct {
		name  string
		input string
		code  ErrorCode
	}{
		{"empty", "", CodeInvalidIdentity},
		{"whitespace only", "   ", CodeInvalidIdentity},
		{"script tag", "<script>alert(1)</script>", CodeXSSDetected},
		{"script tag uppercase", "<SCRIPT>alert('xss')</SCRIPT>", CodeXSSDetected},
		{"img tag", "<img src=x onerror=alert('xss')>", CodeXSSDetected},
		{"span tag", "<span>not allowed</span>", CodeXSSDetected},
		{"unclosed script", "Jean<script", CodeXSSDetected},
		{"digits", "Jean2", CodeInvalidIdentity},
		{"at sign", "Jean@Dupont", CodeInvalidIdentity},
		{"lone angle bracket", "Jean <", CodeInvalidIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := v.ValidateIdentity(tt.input)
			require.NotNil(t, verr)
			assert.Equal(t, tt.code, verr.Code)
		})
	}
}

func TestValidateIdentityMessages(t *testing.T) {
	v := NewValidator(i18n.MustNew(i18n.FR))

	assert.Equal(t, &ValidationError{
		Code:    CodeInvalidIdentity,
		Message: "Le nom et prénom sont obligatoires et ne peuvent pas être vides.",
	}, v.ValidateIdentity(""))
	assert.Equal(t, &ValidationError{
		Code:    CodeXSSDetected,
		Message: "Le nom contient des caractères dangereux non autorisés.",
	}, v.ValidateIdentity("<script>alert('xss')</script>"))
	assert.Equal(t, &ValidationError{
		Code:    CodeInvalidIdentity,
		Message: "Le nom ne doit contenir que des lettres, espaces, tirets et apostrophes.",
	}, v.ValidateIdentity("Jean2"))
}

func TestValidateIdentityMinLength(t *testing.T) {
	v := NewValidator(i18n.MustNew(i18n.FR), WithIdentityMinLength(2))

	assert.Equal(t, &ValidationError{
		Code:    CodeInvalidLength,
		Message: "Le prénom doit contenir au moins 2 caractères",
	}, v.ValidateIdentity("A"))
	assert.Equal(t, CodeInvalidIdentity, v.ValidateIdentity("").Code)
	assert.Nil(t, v.ValidateIdentity("Al"))
	assert.Nil(t, v.ValidateIdentity("Éa"))
}

func TestValidatePostalCode(t *testing.T) {
	catalog := i18n.MustNew(i18n.FR)

	t.Run("five digits", func(t *testing.T) {
		v := NewValidator(catalog)
		assert.Equal(t, PostalFive, v.PostalFormat())
		assert.Nil(t, v.ValidatePostalCode("75001"))
		assert.Nil(t, v.ValidatePostalCode("34000"))

		for _, code := range []string{"123", "", "340000", "34A00", "75001-1234", " 75001"} {
			verr := v.ValidatePostalCode(code)
			require.NotNil(t, verr, code)
			assert.Equal(t, CodeInvalidPostalCode, verr.Code)
			assert.Equal(t, "Le code postal doit être composé de 5 chiffres exactement.", verr.Message)
		}
	})

	t.Run("extended", func(t *testing.T) {
		v := NewValidator(catalog, WithPostalFormat(PostalExtended))
		assert.Nil(t, v.ValidatePostalCode("75001-1234"))
		assert.Nil(t, v.ValidatePostalCode("34000-1234"))

		for _, code := range []string{"75001", "3400", "340000", "34A00-1234", "75001-123"} {
			verr := v.ValidatePostalCode(code)
			require.NotNil(t, verr, code)
			assert.Equal(t, CodeInvalidPostalCode, verr.Code)
			assert.Equal(t, "Le code postal doit être composé de 5 chiffres, un tiret, puis 4 chiffres (ex: 12345-6789).", verr.Message)
		}
	})
}

func TestParsePostalFormat(t *testing.T) {
	tests := []struct {
		in   string
		want PostalFormat
	}{
		{"five", PostalFive},
		{"5", PostalFive},
		{"EXTENDED", PostalExtended},
		{"5-4", PostalExtended},
	}
	for _, tt := range tests {
		got, err := ParsePostalFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParsePostalFormat("zip+4")
	assert.Error(t, err)
}

func TestValidateEmail(t *testing.T) {
	v := NewValidator(i18n.MustNew(i18n.FR))

	for _, email := range []string{"test@test.com", "test@example.com", "test.user+test@sub.domain.fr"} {
		assert.Nil(t, v.ValidateEmail(email), email)
	}

	for _, email := range []string{"invalid-email", "test@", "@fakedomaine.com", "", "a b@c.d", "a@b@c.d", "test@domain"} {
		verr := v.ValidateEmail(email)
		require.NotNil(t, verr, email)
		assert.Equal(t, CodeInvalidEmail, verr.Code)
		assert.Equal(t, "Veuillez saisir une adresse email valide (test@test.com).", verr.Message)
	}
}

func TestValidatorsAreIdempotent(t *testing.T) {
	v := NewValidator(i18n.MustNew(i18n.EN), WithIdentityMinLength(2))
	inputs := []string{"", "A", "Jean2", "<b>x</b>", "Jean Dupont", "75001", "x@y.z"}

	for _, in := range inputs {
		assert.Equal(t, v.ValidateIdentity(in), v.ValidateIdentity(in))
		assert.Equal(t, v.ValidatePostalCode(in), v.ValidatePostalCode(in))
		assert.Equal(t, v.ValidateEmail(in), v.ValidateEmail(in))
	}
}

func TestRegisterTags(t *testing.T) {
	type record struct {
		Name   string `validate:"required,identity"`
		Postal string `validate:"required,postalcode"`
		Email  string `validate:"required,emailshape"`
	}

	validate := validator.New()
	require.NoError(t, RegisterTags(validate, NewValidator(i18n.MustNew(i18n.FR))))

	assert.NoError(t, validate.Struct(record{Name: "Jean", Postal: "75001", Email: "jean@test.com"}))

	err := validate.Struct(record{Name: "Jean2", Postal: "123", Email: "nope"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 3)
	assert.Equal(t, TagIdentity, verrs[0].Tag())
	assert.Equal(t, TagPostalCode, verrs[1].Tag())
	assert.Equal(t, TagEmail, verrs[2].Tag())
}
