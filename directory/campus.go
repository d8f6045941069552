package directory

import "strings"

// =============================================================================
// CAMPUS - Tagged union over two persisted representations
// =============================================================================

// Two account-creation paths produced two shapes of campus data: older
// principal records store a bare string ("engineering"), newer ones store a
// structured object {type, name, location}. Both survive in the store, so
// loads produce a tagged union and everything downstream compares only the
// normalized form.

type CampusKind string

const (
	CampusLegacy     CampusKind = "legacy"     // plain string
	CampusStructured CampusKind = "structured" // {type, name, location}
)

type Campus struct {
	Kind CampusKind

	// Legacy representation: the whole campus as one string.
	Value string

	// Structured representation.
	Type     string
	Name     string
	Location string
}

// LegacyCampus wraps a plain-string campus.
func LegacyCampus(value string) Campus {
	return Campus{Kind: CampusLegacy, Value: value}
}

// StructuredCampus wraps the object form.
func StructuredCampus(campusType, name, location string) Campus {
	return Campus{Kind: CampusStructured, Type: campusType, Name: name, Location: location}
}

// Normalize collapses either representation to a single lowercase campus
// type string. This is the only value business logic may compare; nothing
// outside this file branches on Kind.
func (c Campus) Normalize() string {
	switch c.Kind {
	case CampusStructured:
		return strings.ToLower(strings.TrimSpace(c.Type))
	default:
		return strings.ToLower(strings.TrimSpace(c.Value))
	}
}

// IsZero reports whether no campus was recorded at all.
func (c Campus) IsZero() bool {
	return c.Value == "" && c.Type == "" && c.Name == "" && c.Location == ""
}
