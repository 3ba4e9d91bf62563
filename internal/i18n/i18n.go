// Package i18n holds the user-facing message catalogs.
//
// One locale is active per deployment (config key `locale`). Messages are
// looked up by key through a go-playground universal-translator, the same
// translator type the struct validator uses for its own tag messages, so
// every string the API returns comes out of a single catalog.
package i18n

import (
	"errors"
	"fmt"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
)

// Locale identifies a message catalog.
type Locale string

const (
	FR Locale = "fr"
	EN Locale = "en"
)

// ErrUnsupportedLocale is returned for a locale with no catalog.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// Message keys. Keys are stable; texts differ per locale.
const (
	MissingParam         = "missing_param"
	InvalidFormat        = "invalid_format"
	MissingBirthProperty = "missing_birth_property"
	BirthNotDate         = "birth_not_date"
	BirthImpossible      = "birth_impossible"
	BirthInFuture        = "birth_in_future"
	BirthTooOld          = "birth_too_old"
	BirthRequired        = "birth_required"
	AgeTooYoung          = "age_too_young"
	IdentityRequired     = "identity_required"
	IdentityTooShort     = "identity_too_short"
	IdentityXSS          = "identity_xss"
	IdentityCharset      = "identity_charset"
	PostalFiveDigits     = "postal_five_digits"
	PostalExtended       = "postal_extended"
	EmailInvalid         = "email_invalid"
	EmailDuplicate       = "email_duplicate"
	Registered           = "registered"
	FormInvalid          = "form_invalid"
	CountNone            = "count_none"
	CountOne             = "count_one"
	CountMany            = "count_many"
	RemoteUnavailable    = "remote_unavailable"
	ServerError          = "server_error"
)

var catalogs = map[Locale]map[string]string{
	FR: {
		MissingParam:         "Le paramètre est manquant.",
		InvalidFormat:        "Le format n'est pas correct.",
		MissingBirthProperty: "La date de naissance est manquante.",
		BirthNotDate:         "La date de naissance n'est pas valide.",
		BirthImpossible:      "Cette date est impossible.",
		BirthInFuture:        "Il est impossible de renseigner une date de naissance dans le futur",
		BirthTooOld:          "Cette date est trop ancienne.",
		BirthRequired:        "La date de naissance est obligatoire",
		AgeTooYoung:          "L'utilisateur doit avoir au moins {0} ans",
		IdentityRequired:     "Le nom et prénom sont obligatoires et ne peuvent pas être vides.",
		IdentityTooShort:     "Le prénom doit contenir au moins {0} caractères",
		IdentityXSS:          "Le nom contient des caractères dangereux non autorisés.",
		IdentityCharset:      "Le nom ne doit contenir que des lettres, espaces, tirets et apostrophes.",
		PostalFiveDigits:     "Le code postal doit être composé de 5 chiffres exactement.",
		PostalExtended:       "Le code postal doit être composé de 5 chiffres, un tiret, puis 4 chiffres (ex: 12345-6789).",
		EmailInvalid:         "Veuillez saisir une adresse email valide (test@test.com).",
		EmailDuplicate:       "Cet email est déjà utilisé.",
		Registered:           "Utilisateur enregistré avec succès !",
		FormInvalid:          "Le formulaire contient des erreurs.",
		CountNone:            "Aucun utilisateur inscrit",
		CountOne:             "1 utilisateur inscrit",
		CountMany:            "{0} utilisateurs inscrits",
		RemoteUnavailable:    "Le service d'enregistrement est indisponible, veuillez réessayer.",
		ServerError:          "Une erreur est survenue, veuillez réessayer plus tard.",
	},
	EN: {
		MissingParam:         "missing param p",
		InvalidFormat:        "format is not correct",
		MissingBirthProperty: "birth property is missing",
		BirthNotDate:         "Not valid birth date",
		BirthImpossible:      "This date is impossible",
		BirthInFuture:        "It is impossible to be born in the future",
		BirthTooOld:          "This date is too far in the past",
		BirthRequired:        "Birth date is required",
		AgeTooYoung:          "User must be at least {0} years old",
		IdentityRequired:     "First and last name are required and cannot be blank.",
		IdentityTooShort:     "Name must contain at least {0} characters",
		IdentityXSS:          "Potential XSS content detected in name.",
		IdentityCharset:      "Name must only contain letters, spaces, hyphens and apostrophes.",
		PostalFiveDigits:     "Postal code must be exactly 5 digits.",
		PostalExtended:       "Postal code must be 5 digits, a hyphen, then 4 digits (e.g. 12345-6789).",
		EmailInvalid:         "Please enter a valid email address (test@test.com).",
		EmailDuplicate:       "This email is already registered.",
		Registered:           "User registered successfully!",
		FormInvalid:          "The form contains errors.",
		CountNone:            "No registered users",
		CountOne:             "1 registered user",
		CountMany:            "{0} registered users",
		RemoteUnavailable:    "The registration service is unavailable, please retry.",
		ServerError:          "Something went wrong, please try again later.",
	},
}

// Catalog resolves message keys for one locale. It is read-only after
// construction and safe for concurrent use.
type Catalog struct {
	locale Locale
	trans  ut.Translator
}

// New builds the catalog for locale.
func New(locale Locale) (*Catalog, error) {
	texts, ok := catalogs[locale]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}

	uni := ut.New(en.New(), en.New(), fr.New())
	trans, found := uni.GetTranslator(string(locale))
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}

	for key, text := range texts {
		if err := trans.Add(key, text, false); err != nil {
			return nil, fmt.Errorf("i18n.New: add %s/%s: %w", locale, key, err)
		}
	}

	return &Catalog{locale: locale, trans: trans}, nil
}

// MustNew is New for package-level defaults and tests.
func MustNew(locale Locale) *Catalog {
	c, err := New(locale)
	if err != nil {
		panic(err)
	}
	return c
}

// Locale reports the catalog's locale.
func (c *Catalog) Locale() Locale { return c.locale }

// Translator exposes the underlying translator so the struct validator can
// register its tag translations into the same catalog.
func (c *Catalog) Translator() ut.Translator { return c.trans }

// Text returns the message for key with {n} placeholders filled from params.
// An unknown key is returned as-is so a missing entry is visible, not fatal.
func (c *Catalog) Text(key string, params ...string) string {
	s, err := c.trans.T(key, params...)
	if err != nil {
		return key
	}
	return s
}
