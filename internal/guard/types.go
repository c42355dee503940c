// Package guard implements the error-kind taxonomy and invariant checks
// (spec.md §7, I1-I5) shared across the exploration engine, absorbing
// manager, and refinement controller.
//
// Grounded on gate/types.go's VetoType enum (a closed set of named
// failure categories carried on a small value type) and on eval/eval.go's
// tolerance-based invariant checking (P3's floating-point comparison
// follows the same style as eval's norm-drift checks).
package guard

import "fmt"

// Kind enumerates the error categories from spec.md §7.
type Kind string

const (
	UnsupportedModel       Kind = "unsupported_model"
	AbsorbingSetupFailed   Kind = "absorbing_setup_failed"
	EmptyBehavior          Kind = "empty_behavior"
	EmptyInitial           Kind = "empty_initial"
	RemapSizeMismatch      Kind = "remap_size_mismatch"
	UnreachablePredecessor Kind = "unreachable_predecessor"
	GeneratorException     Kind = "generator_exception"
)

// fatalKinds are the kinds that terminate the process (spec.md §7
// propagation policy); everything else is recoverable.
var fatalKinds = map[Kind]bool{
	UnsupportedModel:     true,
	AbsorbingSetupFailed: true,
	EmptyBehavior:        true,
	EmptyInitial:         true,
}

// StaminaError carries a classified Kind alongside the usual error chain,
// so callers can distinguish fatal from recoverable without string
// matching.
type StaminaError struct {
	Kind    Kind
	Fatal   bool
	Message string
	Err     error
}

func (e *StaminaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *StaminaError) Unwrap() error { return e.Err }

// New builds a StaminaError of the given kind, fatal iff the kind is one
// of the four terminating categories.
func New(kind Kind, message string) *StaminaError {
	return &StaminaError{Kind: kind, Fatal: fatalKinds[kind], Message: message}
}

// Wrap builds a StaminaError of the given kind around an underlying
// error, preserving it for errors.Is/As via Unwrap.
func Wrap(kind Kind, message string, err error) *StaminaError {
	return &StaminaError{Kind: kind, Fatal: fatalKinds[kind], Message: message, Err: err}
}

// IsFatal reports whether err (or any error it wraps) is a fatal
// StaminaError. A plain, unclassified error is treated as non-fatal: the
// caller's own recovery path decides what to do with it.
func IsFatal(err error) bool {
	var se *StaminaError
	if ok := asStaminaError(err, &se); ok {
		return se.Fatal
	}
	return false
}

func asStaminaError(err error, target **StaminaError) bool {
	for err != nil {
		if se, ok := err.(*StaminaError); ok {
			*target = se
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
