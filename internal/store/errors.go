package store

import (
	"errors"
	"sort"
	"strings"

	"tally-web/internal/model"
)

// ErrNotFound is returned when the target row vanished (e.g. deleted from
// another session between opening a form and submitting it).
var ErrNotFound = errors.New("expense not found")

// ValidationError carries field-level messages back to the form that
// submitted the draft. It is always recoverable: the form stays open and
// redisplays the messages inline.
type ValidationError struct {
	Fields model.FieldErrors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid draft: " + strings.Join(fields, ", ")
}
