// Package users has the pure list operations behind the registered-users
// page: counting, searching, sorting and duplicate detection.
package users

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/aanand-mishra/registration-api/internal/i18n"
	"github.com/aanand-mishra/registration-api/internal/types"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// AddToList returns a new slice with u appended; list is left untouched.
func AddToList(u types.User, list []types.User) []types.User {
	out := make([]types.User, 0, len(list)+1)
	out = append(out, list...)
	return append(out, u)
}

func Count(list []types.User) int {
	return len(list)
}

// Filter keeps the users whose first name, last name, email or city
// contains term, ignoring case. A blank term keeps everyone.
func Filter(list []types.User, term string) []types.User {
	if strings.TrimSpace(term) == "" {
		return list
	}

	fold := cases.Fold()
	needle := fold.String(term)

	out := make([]types.User, 0, len(list))
	for _, u := range list {
		for _, field := range []string{u.FirstName, u.LastName, u.Email, u.City} {
			if strings.Contains(fold.String(field), needle) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

// SortByName orders a copy of list by "lastName firstName" using the
// collation rules of locale. Desc reverses the order.
func SortByName(list []types.User, order Order, locale i18n.Locale) []types.User {
	tag := language.Make(string(locale))
	col := collate.New(tag, collate.IgnoreCase)

	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b types.User) int {
		cmp := col.CompareString(sortKey(a), sortKey(b))
		if order == Desc {
			return -cmp
		}
		return cmp
	})
	return out
}

func sortKey(u types.User) string {
	return strings.ToLower(u.LastName + " " + u.FirstName)
}

// Exists reports whether a user with email is already in list.
func Exists(email string, list []types.User) bool {
	for _, u := range list {
		if strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// FormatCountText renders the "N registered users" sentence.
func FormatCountText(catalog *i18n.Catalog, count int) string {
	switch count {
	case 0:
		return catalog.Text(i18n.CountNone)
	case 1:
		return catalog.Text(i18n.CountOne)
	default:
		return catalog.Text(i18n.CountMany, strconv.Itoa(count))
	}
}
