// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package articles

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrNotFound is returned when no article matches the given id or slug.
var ErrNotFound = errors.New("article not found")

// ValidationError reports rejected input, one message per offending field.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// Messages returns the field messages sorted by field name.
func (e *ValidationError) Messages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+" "+e.Fields[k].Error())
	}
	return out
}

// asValidationError converts an ozzo error into a *ValidationError. Internal
// rule errors are passed through unchanged.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var ve validation.Errors
	if errors.As(err, &ve) {
		return &ValidationError{Fields: ve}
	}
	return err
}
