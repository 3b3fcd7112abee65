package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these to classify a failure.
var (
	ErrSchema          = errors.New("schema error")
	ErrDataIntegrity   = errors.New("data integrity error")
	ErrUnsupportedFile = errors.New("unsupported file")
)

// SchemaError reports input that does not match the expected layout:
// a missing sheet, a missing column or a cell of the wrong type.
type SchemaError struct {
	Sheet  string
	Column string
	Detail string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Column != "" && e.Detail != "":
		return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Detail)
	case e.Column != "":
		return fmt.Sprintf("schema error: missing column %q", e.Column)
	case e.Sheet != "" && e.Detail != "":
		return fmt.Sprintf("schema error: sheet %q: %s", e.Sheet, e.Detail)
	case e.Sheet != "":
		return fmt.Sprintf("schema error: missing sheet %q", e.Sheet)
	default:
		return "schema error: " + e.Detail
	}
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// MissingColumn returns a SchemaError naming the absent column.
func MissingColumn(column string) error {
	return &SchemaError{Column: column}
}

// DataIntegrityError reports that an expected category result was not produced.
type DataIntegrityError struct {
	Category string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity error: no result for category %q", e.Category)
}

func (e *DataIntegrityError) Is(target error) bool { return target == ErrDataIntegrity }

// UnsupportedFileError rejects an upload by extension before any processing.
type UnsupportedFileError struct {
	Filename string
	Allowed  []string
}

func (e *UnsupportedFileError) Error() string {
	return fmt.Sprintf("unsupported file %q: expected one of %v", e.Filename, e.Allowed)
}

func (e *UnsupportedFileError) Is(target error) bool { return target == ErrUnsupportedFile }
