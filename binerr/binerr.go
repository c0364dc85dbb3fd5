// Package binerr defines the error taxonomy raised by the schema engine.
//
// Each error kind has a package-level sentinel so callers can test with
// errors.Is, and a richer typed value carrying the detail that produced it,
// reachable through errors.As or Unwrap.
package binerr

import (
	"errors"
	"fmt"
)

// Sentinels. Compare against these with errors.Is; the concrete error values
// returned by the engine wrap one of these via Unwrap.
var (
	ErrUnregisteredType  = errors.New("unregistered type")
	ErrNameCollision     = errors.New("name collision")
	ErrMutuallyExclusive = errors.New("mutually exclusive parameters")
	ErrValidity          = errors.New("check_value failed")
	ErrShortRead         = errors.New("short read")
	ErrShortWrite        = errors.New("short write")
	ErrUnresolvedName    = errors.New("unresolved name")
	ErrInvalidAssignment = errors.New("invalid assignment")
)

// UnregisteredTypeError is raised when a schema references a type name the
// registry does not know.
type UnregisteredTypeError struct {
	Name string
}

func (e *UnregisteredTypeError) Error() string {
	return fmt.Sprintf("binstruct: unregistered type %q", e.Name)
}

func (e *UnregisteredTypeError) Unwrap() error { return ErrUnregisteredType }

// NameCollisionError is raised at sanitization when a field name is
// duplicated or shadows a reserved name.
type NameCollisionError struct {
	Container string
	Name      string
	Reason    string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("binstruct: %s: field name %q: %s", e.Container, e.Name, e.Reason)
}

func (e *NameCollisionError) Unwrap() error { return ErrNameCollision }

// MutuallyExclusiveError is raised when two mutually exclusive parameters are
// both supplied, e.g. Array's InitialLength and ReadUntil.
type MutuallyExclusiveError struct {
	Container string
	A, B      string
}

func (e *MutuallyExclusiveError) Error() string {
	return fmt.Sprintf("binstruct: %s: %s and %s are mutually exclusive", e.Container, e.A, e.B)
}

func (e *MutuallyExclusiveError) Unwrap() error { return ErrMutuallyExclusive }

// ValidityError is raised when a field's check_value predicate fails on read.
type ValidityError struct {
	Field    string
	Got      any
	Expected any
}

func (e *ValidityError) Error() string {
	return fmt.Sprintf("binstruct: field %q failed check_value: got %v, want %v", e.Field, e.Got, e.Expected)
}

func (e *ValidityError) Unwrap() error { return ErrValidity }

// ShortReadError is raised when the stream is exhausted mid-field.
type ShortReadError struct {
	Field string
	Want  int
	Got   int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("binstruct: field %q: short read: wanted %d bytes, got %d", e.Field, e.Want, e.Got)
}

func (e *ShortReadError) Unwrap() error { return ErrShortRead }

// ShortWriteError is raised when a write to the underlying sink is partial.
type ShortWriteError struct {
	Field string
	Want  int
	Got   int
}

func (e *ShortWriteError) Error() string {
	return fmt.Sprintf("binstruct: field %q: short write: wanted %d bytes, wrote %d", e.Field, e.Want, e.Got)
}

func (e *ShortWriteError) Unwrap() error { return ErrShortWrite }

// UnresolvedNameError is raised when the LazyEvaluator cannot resolve a
// symbol anywhere in the ancestor chain.
type UnresolvedNameError struct {
	Name  string
	Chain []string
}

func (e *UnresolvedNameError) Error() string {
	return fmt.Sprintf("binstruct: unresolved name %q (searched %v)", e.Name, e.Chain)
}

func (e *UnresolvedNameError) Unwrap() error { return ErrUnresolvedName }

// InvalidAssignmentError is raised when assigning to a computed-value field,
// or when a snapshot is type-incompatible with its target field.
type InvalidAssignmentError struct {
	Field  string
	Reason string
}

func (e *InvalidAssignmentError) Error() string {
	return fmt.Sprintf("binstruct: cannot assign field %q: %s", e.Field, e.Reason)
}

func (e *InvalidAssignmentError) Unwrap() error { return ErrInvalidAssignment }
