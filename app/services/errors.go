package services

import (
	"errors"
	"sort"
	"strings"
)

// ValidationError reports client input the services refused. Controllers
// map it to HTTP 400; every other error is a 500.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err (or anything it wraps) is a
// ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(msg string) error { return &ValidationError{Message: msg} }

// fieldErrors turns a validate.Struct result into a ValidationError whose
// message lists every failing field in name order.
func fieldErrors(errs map[string]string) error {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, errs[name])
	}
	return &ValidationError{Message: strings.Join(msgs, " "), Fields: errs}
}
