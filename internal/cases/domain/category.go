// Package domain holds the case pipeline aggregate and its invariants.
// It has no persistence or transport dependencies.
package domain

import "strings"

// Category classifies a case and determines which stage vocabulary applies.
type Category string

const (
	CategoryLabor          Category = "labor"
	CategoryCommercial     Category = "commercial"
	CategoryCivil          Category = "civil"
	CategoryFamily         Category = "family"
	CategoryCriminal       Category = "criminal"
	CategoryAdministrative Category = "administrative"
	CategoryOther          Category = "other"
)

// Categories lists all known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryLabor,
		CategoryCommercial,
		CategoryCivil,
		CategoryFamily,
		CategoryCriminal,
		CategoryAdministrative,
		CategoryOther,
	}
}

// ParseCategory normalizes a category string. Unrecognized or empty input
// resolves to CategoryOther; the function is total so stage lookups can
// never fail on bad data.
func ParseCategory(value string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(value))) {
	case CategoryLabor:
		return CategoryLabor
	case CategoryCommercial:
		return CategoryCommercial
	case CategoryCivil:
		return CategoryCivil
	case CategoryFamily:
		return CategoryFamily
	case CategoryCriminal:
		return CategoryCriminal
	case CategoryAdministrative:
		return CategoryAdministrative
	default:
		return CategoryOther
	}
}
