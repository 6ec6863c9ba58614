package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrMalformed = errors.New("malformed request body")

type Validated interface {
	Validate() error
}

// ValidationError reports a user-correctable problem with one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Decode reads a single JSON document from r into T.
func Decode[T any](r io.Reader) (*T, error) {
	var data T
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return &data, nil
}

func ParseAndValidate[T Validated](r io.Reader) (*T, error) {
	data, err := Decode[T](r)
	if err != nil {
		return nil, err
	}
	if err := (*data).Validate(); err != nil {
		return nil, err
	}
	return data, nil
}
