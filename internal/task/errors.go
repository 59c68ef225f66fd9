package task

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by Manager for a rejected operation wraps
// exactly one of these, so callers can branch with errors.Is.
var (
	ErrValidation           = errors.New("validation error")
	ErrNotFound             = errors.New("task not found")
	ErrUnresolvedDependency = errors.New("unresolved dependency")
	ErrDependencyCycle      = errors.New("dependency cycle")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrInvalidTransition    = errors.New("invalid state transition")
)

// Error is a structured rejection: the kind, a readable explanation, and the
// ids or names that caused it. For cycles Refs holds the cycle path.
type Error struct {
	Kind error
	Msg  string
	Refs []string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

// errUnchanged aborts a store update without writing; the operation itself
// succeeded as a no-op.
var errUnchanged = errors.New("unchanged")

func validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func notFound(id string) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf("no task with id %q", id), Refs: []string{id}}
}

func unresolvedf(refs []string, format string, args ...any) error {
	return &Error{Kind: ErrUnresolvedDependency, Msg: fmt.Sprintf(format, args...), Refs: refs}
}

func integrityf(refs []string, format string, args ...any) error {
	return &Error{Kind: ErrReferentialIntegrity, Msg: fmt.Sprintf(format, args...), Refs: refs}
}

func transitionf(refs []string, format string, args ...any) error {
	return &Error{Kind: ErrInvalidTransition, Msg: fmt.Sprintf(format, args...), Refs: refs}
}

func cycleError(path []string) error {
	return &Error{
		Kind: ErrDependencyCycle,
		Msg:  "cycle: " + strings.Join(path, " -> "),
		Refs: path,
	}
}
