package service

import "strings"

// ValidationError names every offending field/constraint so callers can fix
// their input without guessing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}
