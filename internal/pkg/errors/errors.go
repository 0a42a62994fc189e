// Package errors holds the sentinels the HTTP layer classifies on. Wrap one
// with %w (or use the helpers) and apierr picks the status.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
)

// Invalidf prefixes ErrInvalidArgument with a formatted subject, e.g.
// Invalidf("priority %q", p) reads `priority "x": invalid argument`.
func Invalidf(format string, args ...any) error {
	return wrapf(ErrInvalidArgument, format, args...)
}

func NotFoundf(format string, args ...any) error {
	return wrapf(ErrNotFound, format, args...)
}

func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
