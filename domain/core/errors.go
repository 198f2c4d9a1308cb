package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound          = errors.New("resource not found")
	ErrPortfolioNotFound = fmt.Errorf("%w: portfolio", ErrNotFound)
	ErrRecordNotFound    = fmt.Errorf("%w: evaluation record", ErrNotFound)

	// Structural errors (malformed evaluation records)
	ErrStructural        = errors.New("structural error")
	ErrUnknownProject    = fmt.Errorf("%w: unregistered project", ErrStructural)
	ErrUnknownCriterion  = fmt.Errorf("%w: unregistered criterion", ErrStructural)
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// Index errors (criterion space mutated after constraints exist)
	ErrIndex       = errors.New("index error")
	ErrSpaceFrozen = fmt.Errorf("%w: criterion space is frozen", ErrIndex)

	// Geometry request errors
	ErrInvalidProjection = errors.New("invalid projection")
)

// StructuralError reports a malformed evaluation record. It names the record
// and the offending field so the caller can correct the input directly.
type StructuralError struct {
	RecordID ID
	Field    string
	Value    interface{}
	Reason   string
	Kind     error
}

func (e *StructuralError) Error() string {
	if e.RecordID.IsEmpty() {
		return fmt.Sprintf("structural error in field %q (value %v): %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("structural error in record %s field %q (value %v): %s", e.RecordID, e.Field, e.Value, e.Reason)
}

// Unwrap returns the sentinel classifying the failure.
func (e *StructuralError) Unwrap() error {
	if e.Kind != nil {
		return e.Kind
	}
	return ErrStructural
}

// IndexError reports a rejected mutation of the variable indexing scheme.
type IndexError struct {
	Field  string
	Value  string
	Reason string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index error on %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *IndexError) Unwrap() error {
	return ErrSpaceFrozen
}

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewStructuralError(recordID ID, field string, value interface{}, reason string) error {
	return &StructuralError{RecordID: recordID, Field: field, Value: value, Reason: reason}
}

func NewUnknownProjectError(recordID ID, project string) error {
	return &StructuralError{
		RecordID: recordID,
		Field:    "projects",
		Value:    project,
		Reason:   "project is not registered in the criterion space",
		Kind:     ErrUnknownProject,
	}
}

func NewUnknownCriterionError(recordID ID, criterion string) error {
	return &StructuralError{
		RecordID: recordID,
		Field:    "criterion",
		Value:    criterion,
		Reason:   "criterion is not registered in the criterion space",
		Kind:     ErrUnknownCriterion,
	}
}

func NewFrozenSpaceError(field, value string) error {
	return &IndexError{
		Field:  field,
		Value:  value,
		Reason: "constraints already exist; indices are fixed",
	}
}

func NewProjectionError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidProjection, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsStructuralError(err error) bool {
	return errors.Is(err, ErrStructural)
}

func IsIndexError(err error) bool {
	return errors.Is(err, ErrIndex)
}
