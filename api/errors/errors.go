package errors

import (
	"fmt"
	"sort"
	"strings"
)

// MultiErrors collects request validation problems keyed by field path.
type MultiErrors struct {
	Errors map[string][]string
}

func NewMultiErrors() *MultiErrors {
	return &MultiErrors{
		Errors: make(map[string][]string),
	}
}

func (e *MultiErrors) Add(field, format string, args ...any) {
	e.Errors[field] = append(e.Errors[field], fmt.Sprintf(format, args...))
}

func (e *MultiErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Error lists problems sorted by field so responses are stable.
func (e *MultiErrors) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var parts []string
	for _, field := range fields {
		for _, msg := range e.Errors[field] {
			parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
		}
	}
	return strings.Join(parts, " | ")
}
