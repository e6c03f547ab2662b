package nodes

import (
	"github.com/samsarahq/go/oops"
)

// Kind classifies the errors the engine can return, matching the error
// kinds surfaced at the interface boundary.
type Kind int

const (
	// KindReadOnly is returned when a caller tries to set or clear a node
	// whose descriptor lacks the Settable flag.
	KindReadOnly Kind = iota
	// KindMutationDuringComputation is returned when a caller tries to
	// set, clear, overlay, or clear an overlay while a node is computing.
	KindMutationDuringComputation
	// KindNoActiveContext is returned when a caller tries to overlay or
	// clear an overlay with no context pushed onto the registry's stack.
	KindNoActiveContext
	// KindNotOverlayed is returned by ReadOverlay against a node that
	// has no active overlay.
	KindNotOverlayed
	// KindInvalidInitializer is returned when a graph object type fails
	// the Bind-time initializer check (see Bind).
	KindInvalidInitializer
	// KindEvaluationCycle is returned when a node is read re-entrantly
	// while already on the active evaluation chain.
	KindEvaluationCycle
	// KindContextAlreadyActive is the kind of ErrContextAlreadyActive, the
	// value Context.Enter panics with when the context is already active.
	KindContextAlreadyActive
	// KindTypeMismatch is returned by TypedHandle.Get when a node's
	// dynamically-typed value doesn't type-assert to the handle's type
	// parameter. This kind has no equivalent in the original: Python's
	// dynamic typing had no such failure mode, but Go's generic edge over
	// an interface{}-typed core needs one.
	KindTypeMismatch
	// KindPanic is returned when a method's callable panics during
	// ReadValue and WithPanicRecovery(false) was not set.
	KindPanic
)

func (k Kind) String() string {
	switch k {
	case KindReadOnly:
		return "ReadOnly"
	case KindMutationDuringComputation:
		return "MutationDuringComputation"
	case KindNoActiveContext:
		return "NoActiveContext"
	case KindNotOverlayed:
		return "NotOverlayed"
	case KindInvalidInitializer:
		return "InvalidInitializer"
	case KindEvaluationCycle:
		return "EvaluationCycle"
	case KindContextAlreadyActive:
		return "ContextAlreadyActive"
	case KindTypeMismatch:
		return "TypeMismatch"
	case KindPanic:
		return "Panic"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every mutating or read operation in
// this package. It carries a Kind so callers can errors.Is against the
// sentinel values below regardless of the wrapped message.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same Kind, ignoring the
// wrapped message. This lets callers write errors.Is(err, nodes.ErrReadOnly).
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.Kind == e.Kind
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, cause: oops.Errorf(format, args...)}
}

// Sentinel errors, one per Kind, for use with errors.Is.
var (
	ErrReadOnly              = &Error{Kind: KindReadOnly}
	ErrMutationDuringCompute = &Error{Kind: KindMutationDuringComputation}
	ErrNoActiveContext       = &Error{Kind: KindNoActiveContext}
	ErrNotOverlayed          = &Error{Kind: KindNotOverlayed}
	ErrInvalidInitializer    = &Error{Kind: KindInvalidInitializer}
	ErrEvaluationCycle       = &Error{Kind: KindEvaluationCycle}
	ErrContextAlreadyActive  = &Error{Kind: KindContextAlreadyActive}
	ErrTypeMismatch          = &Error{Kind: KindTypeMismatch}
	ErrPanic                 = &Error{Kind: KindPanic}
)
