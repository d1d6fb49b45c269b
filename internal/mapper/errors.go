package mapper

import (
	"errors"
	"fmt"
)

// Reasons for a failed mapping. MappingError wraps exactly one of these.
var (
	// ErrMissingAttribute is returned when the qualified name attribute is absent or blank.
	ErrMissingAttribute = errors.New("missing attribute")

	// ErrMalformedQualifiedName is returned when the cluster name cannot be resolved
	// or no resource element could be built from the qualified name.
	ErrMalformedQualifiedName = errors.New("malformed qualified name")

	// ErrUnsupportedEntityType is returned when a mapper receives an entity type
	// outside its declared set.
	ErrUnsupportedEntityType = errors.New("unsupported entity type")

	// ErrNoClassifications is returned by classification-gated mappers
	// for entities without any classification.
	ErrNoClassifications = errors.New("no classifications")
)

// MappingError describes why a single entity could not be mapped.
type MappingError struct {
	Reason        error // One of the sentinel errors above.
	EntityType    string
	GUID          string
	QualifiedName string
	Message       string // Optional details.
}

func (e *MappingError) Error() string {
	msg := fmt.Sprintf("%v: entity %s (type %q", e.Reason, e.GUID, e.EntityType)
	if e.QualifiedName != "" {
		msg += fmt.Sprintf(", qualifiedName %q", e.QualifiedName)
	}
	msg += ")"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *MappingError) Unwrap() error {
	return e.Reason
}
