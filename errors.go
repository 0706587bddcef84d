package strata

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/syssam/strata/dialect/sql/sqlerr"
	"github.com/syssam/strata/query"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("strata: entity not found")

	// ErrNotSingular is returned when a lookup that expects at most one
	// row returns more.
	ErrNotSingular = errors.New("strata: entity not singular")
)

// NotFoundError is returned by the operations that require a row, such
// as Read or Reload, when there is none. Find and FindBy report an
// absent row as a nil entity instead.
type NotFoundError struct {
	label string
	key   []any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if len(e.key) > 0 {
		return fmt.Sprintf("strata: %s not found (key=%v)", e.label, e.key)
	}
	return fmt.Sprintf("strata: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the entity label.
func (e *NotFoundError) Label() string { return e.label }

// Key returns the key that was searched for, if available.
func (e *NotFoundError) Key() []any { return e.key }

// NewNotFoundError returns a new NotFoundError for the given entity and key.
func NewNotFoundError(label string, key ...any) *NotFoundError {
	return &NotFoundError{label: label, key: key}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// NotSingularError is returned when a lookup by key or unique column
// matched more than one row.
type NotSingularError struct {
	label string
	count int
}

// Error returns the error string.
func (e *NotSingularError) Error() string {
	return fmt.Sprintf("strata: %s not singular (got %d results, expected 1)", e.label, e.count)
}

// Is reports whether the target error matches NotSingularError.
func (e *NotSingularError) Is(err error) bool {
	return err == ErrNotSingular
}

// Count returns the number of rows returned.
func (e *NotSingularError) Count() int { return e.count }

// NewNotSingularError returns a new NotSingularError.
func NewNotSingularError(label string, count int) *NotSingularError {
	return &NotSingularError{label: label, count: count}
}

// IsNotSingular returns true if the error is a NotSingularError.
func IsNotSingular(err error) bool {
	if err == nil {
		return false
	}
	var e *NotSingularError
	return errors.As(err, &e) || errors.Is(err, ErrNotSingular)
}

// DecodeError is returned when a row could not be mapped onto an entity.
type DecodeError struct {
	Entity string
	Column string // empty when the failing column is not known
	Err    error
}

// Error returns the error string.
func (e *DecodeError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("strata: decode %s.%s: %v", e.Entity, e.Column, e.Err)
	}
	return fmt.Sprintf("strata: decode %s: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError returns true if the error is a DecodeError.
func IsDecodeError(err error) bool {
	if err == nil {
		return false
	}
	var e *DecodeError
	return errors.As(err, &e)
}

// BindError is returned when the values of a statement could not be
// collected, or do not match its placeholders.
type BindError = query.BindError

// IsBindError returns true if the error is a BindError.
func IsBindError(err error) bool {
	if err == nil {
		return false
	}
	var e *BindError
	return errors.As(err, &e)
}

// Kind classifies the failure reported by the database.
type Kind uint8

// Error kinds.
const (
	KindOther Kind = iota
	KindConnection
	KindNotFound
	KindUnique
	KindForeignKey
	KindCheck
	KindIntegrity
	KindDataException
	KindSyntax
)

var kindNames = [...]string{
	KindOther:         "other",
	KindConnection:    "connection",
	KindNotFound:      "not found",
	KindUnique:        "unique constraint",
	KindForeignKey:    "foreign key constraint",
	KindCheck:         "check constraint",
	KindIntegrity:     "integrity constraint",
	KindDataException: "data exception",
	KindSyntax:        "syntax or access",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Constraint reports if the kind is a constraint violation.
func (k Kind) Constraint() bool {
	switch k {
	case KindUnique, KindForeignKey, KindCheck, KindIntegrity:
		return true
	}
	return false
}

// Classify returns the kind of a driver error.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, sql.ErrNoRows):
		return KindNotFound
	case sqlerr.IsConnectionError(err):
		return KindConnection
	case sqlerr.IsUniqueConstraintError(err):
		return KindUnique
	case sqlerr.IsForeignKeyConstraintError(err):
		return KindForeignKey
	case sqlerr.IsCheckConstraintError(err):
		return KindCheck
	}
	switch class, _ := sqlerr.Class(err); class {
	case sqlerr.ClassIntegrityViolation:
		return KindIntegrity
	case sqlerr.ClassDataException:
		return KindDataException
	case sqlerr.ClassSyntaxOrAccess:
		return KindSyntax
	}
	return KindOther
}

// QueryError wraps an error reported by the driver while executing a
// generated statement. It is never retried.
type QueryError struct {
	Entity string // Entity type
	Table  string // Qualified table name
	Op     string // Operation (e.g. "insert", "select", "delete")
	Kind   Kind
	Err    error // Underlying driver error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	return fmt.Sprintf("strata: %s %s (%s): %s: %v", e.Op, e.Entity, e.Table, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error { return e.Err }

// NewQueryError returns a new QueryError, classifying err.
func NewQueryError(entity, table, op string, err error) *QueryError {
	return &QueryError{Entity: entity, Table: table, Op: op, Kind: Classify(err), Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// IsConstraintError returns true if the error is a QueryError caused by
// a constraint violation.
func IsConstraintError(err error) bool {
	var e *QueryError
	return errors.As(err, &e) && e.Kind.Constraint()
}

// IsUniqueConstraintError returns true if the error is a QueryError
// caused by a unique constraint violation.
func IsUniqueConstraintError(err error) bool { return isKind(err, KindUnique) }

// IsForeignKeyConstraintError returns true if the error is a QueryError
// caused by a foreign key constraint violation.
func IsForeignKeyConstraintError(err error) bool { return isKind(err, KindForeignKey) }

// IsConnectionError returns true if the error is a QueryError caused by
// a connection failure.
func IsConnectionError(err error) bool { return isKind(err, KindConnection) }

func isKind(err error, k Kind) bool {
	var e *QueryError
	return errors.As(err, &e) && e.Kind == k
}

// HookError wraps an error returned by a hook, aborting the operation.
type HookError struct {
	Stage Stage
	Op    string
	Err   error
}

// Error returns the error string.
func (e *HookError) Error() string {
	return fmt.Sprintf("strata: %s hook of %s: %v", e.Stage, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *HookError) Unwrap() error { return e.Err }

// RollbackError wraps an error that occurred during a transaction rollback.
type RollbackError struct {
	Err      error // Original error that triggered rollback
	Rollback error // Error returned by the rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("strata: %v: rollback failed: %v", e.Err, e.Rollback)
}

// Unwrap returns the underlying errors.
func (e *RollbackError) Unwrap() []error { return []error{e.Err, e.Rollback} }
