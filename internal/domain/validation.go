package domain

import (
	"errors"
	"sort"
	"strings"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// FieldError describes why a single input field was rejected.
type FieldError struct {
	Msg      string `json:"msg"`
	Param    string `json:"param"`
	Location string `json:"location"`
}

// ValidationError collects field-level input errors, keyed by field name.
type ValidationError struct {
	Fields map[string]FieldError
}

// Add records an error for the field unless one is already recorded.
func (e *ValidationError) Add(location, param, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]FieldError)
	}

	if _, ok := e.Fields[param]; ok {
		return
	}

	e.Fields[param] = FieldError{Msg: msg, Param: param, Location: location}
}

// Empty reports whether no field errors were recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	params := make([]string, 0, len(e.Fields))
	for param := range e.Fields {
		params = append(params, param)
	}

	sort.Strings(params)

	parts := make([]string, 0, len(params))
	for _, param := range params {
		parts = append(parts, param+": "+e.Fields[param].Msg)
	}

	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
