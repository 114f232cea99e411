// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is matched (with errors.Is) by every ValidationError.
var ErrInvalidConfig = errors.New("invalid experiment configuration")

// FieldError describes one offending field of an experiment document.
type FieldError struct {
	// Group is the top-level group, e.g. "cg_params".
	Group string

	// Field is the path of the field within Group, e.g. "ll" or "InfoNCE.critic".
	// It is empty when the error is about the group itself.
	Field string

	// Value is the offending value, if any.
	Value any

	Message string
}

// Path returns "group.field", or only the group if Field is empty.
func (e FieldError) Path() string {
	if e.Field == "" {
		return e.Group
	}
	if e.Group == "" {
		return e.Field
	}
	return e.Group + "." + e.Field
}

// Error implements error.
func (e FieldError) Error() string {
	path := e.Path()
	if path == "" {
		path = "<document>"
	}
	if e.Value != nil {
		return fmt.Sprintf("%s: %s (got %v)", path, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", path, e.Message)
}

// ValidationError bundles all the field errors found in a document.
type ValidationError struct {
	Errors []FieldError
}

// Error implements error.
func (e *ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return ErrInvalidConfig.Error()
	case 1:
		return fmt.Sprintf("%s: %s", ErrInvalidConfig, e.Errors[0])
	}
	msgs := make([]string, len(e.Errors))
	for ii, fieldErr := range e.Errors {
		msgs[ii] = fieldErr.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Is makes errors.Is(err, ErrInvalidConfig) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Has returns whether there is an error for the given group and field.
func (e *ValidationError) Has(group, field string) bool {
	for _, fieldErr := range e.Errors {
		if fieldErr.Group == group && fieldErr.Field == field {
			return true
		}
	}
	return false
}

// validator accumulates FieldError values.
type validator struct {
	errs []FieldError
}

func (v *validator) add(group, field string, value any, format string, args ...any) {
	v.errs = append(v.errs, FieldError{
		Group:   group,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: append([]FieldError(nil), v.errs...)}
}
