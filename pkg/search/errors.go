package search

import (
	"errors"
	"fmt"
)

// ErrFieldNotFound matches every *FieldNotFoundError with errors.Is.
var ErrFieldNotFound = errors.New("field not found")

// FieldNotFoundError reports a selector with no field behind it.
type FieldNotFoundError struct {
	Selector string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field '%s' is not searchable", e.Selector)
}

func (e *FieldNotFoundError) Is(target error) bool {
	return target == ErrFieldNotFound
}
