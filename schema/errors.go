package schema

import (
	"errors"
	"fmt"
)

// SchemaError reports a malformed table declaration. It is returned by
// Build and by registry construction, and is never produced while
// generating or running queries.
type SchemaError struct {
	Table  string // Table name, may be empty when the name itself is invalid
	Column string // Offending column, if any
	Msg    string
}

// Error returns the error string.
func (e *SchemaError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("schema: %s.%s: %s", e.Table, e.Column, e.Msg)
	case e.Table != "":
		return fmt.Sprintf("schema: %s: %s", e.Table, e.Msg)
	default:
		return "schema: " + e.Msg
	}
}

// IsSchemaError returns true if the error, or any error joined into it, is a SchemaError.
func IsSchemaError(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaError
	return errors.As(err, &e)
}

func errorf(table, column, format string, args ...any) *SchemaError {
	return &SchemaError{Table: table, Column: column, Msg: fmt.Sprintf(format, args...)}
}
