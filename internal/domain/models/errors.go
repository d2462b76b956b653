package models

import (
	"errors"
	"fmt"
)

// Error kinds returned by every calculator. Use errors.Is to branch on them.
var (
	// ErrParse marks malformed or out-of-domain numeric/unit input.
	ErrParse = errors.New("parse error")
	// ErrDomain marks valid numbers that are physically inconsistent.
	ErrDomain = errors.New("domain error")
	// ErrPlanning marks a serial plan that cannot be built.
	ErrPlanning = errors.New("planning error")
)

// CalcError is the value returned instead of a result when a calculation fails.
// Message is meant to be shown to the user verbatim.
type CalcError struct {
	Kind    error  `json:"-"`
	Field   string `json:"field,omitempty"`
	Message string `json:"error"`
}

func (e *CalcError) Error() string {
	return e.Message
}

func (e *CalcError) Unwrap() error {
	return e.Kind
}

// KindName returns the short name of the error kind ("parse", "domain", "planning").
func (e *CalcError) KindName() string {
	switch e.Kind {
	case ErrParse:
		return "parse"
	case ErrDomain:
		return "domain"
	case ErrPlanning:
		return "planning"
	default:
		return "unknown"
	}
}

// ParseErrorf builds a parse error.
func ParseErrorf(format string, args ...any) *CalcError {
	return &CalcError{Kind: ErrParse, Message: fmt.Sprintf(format, args...)}
}

// DomainErrorf builds a domain error.
func DomainErrorf(format string, args ...any) *CalcError {
	return &CalcError{Kind: ErrDomain, Message: fmt.Sprintf(format, args...)}
}

// PlanningErrorf builds a planning error.
func PlanningErrorf(format string, args ...any) *CalcError {
	return &CalcError{Kind: ErrPlanning, Message: fmt.Sprintf(format, args...)}
}

// WithField tags err with the input field that caused it. Errors that are not
// a *CalcError, or that already carry a field, are returned unchanged.
func WithField(err error, field string) error {
	var calcErr *CalcError
	if !errors.As(err, &calcErr) || calcErr.Field != "" {
		return err
	}
	tagged := *calcErr
	tagged.Field = field
	return &tagged
}

// KindFromName is the inverse of KindName. It returns nil for unknown names.
func KindFromName(name string) error {
	switch name {
	case "parse":
		return ErrParse
	case "domain":
		return ErrDomain
	case "planning":
		return ErrPlanning
	default:
		return nil
	}
}
