package searcherr

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

type Kind string

const (
	InvalidFilterSpec                Kind = "InvalidFilterSpec"
	UnrankedConsequence              Kind = "UnrankedConsequence"
	NoRankedTerm                     Kind = "NoRankedTerm"
	UnknownInheritanceMode           Kind = "UnknownInheritanceMode"
	PopulationFrequencyLookupFailure Kind = "PopulationFrequencyLookupFailure"
	DatastoreFailure                 Kind = "DatastoreFailure"
)

// Error is the single error type surfaced by the search engine.
// Callers branch on Kind rather than on message text.
type Error struct {
	Kind   Kind
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an external failure, keeping its stack through eris.
func Wrap(kind Kind, cause error, format string, args ...interface{}) error {
	detail := fmt.Sprintf(format, args...)
	return &Error{Kind: kind, Detail: detail, cause: eris.Wrap(cause, detail)}
}

// KindOf returns the kind of the first *Error in the chain, if any.
func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Classify leaves errors that already carry a kind untouched and wraps any
// other failure under kind.
func Classify(kind Kind, err error, format string, args ...interface{}) error {
	if _, ok := KindOf(err); ok {
		return err
	}
	return Wrap(kind, err, format, args...)
}
