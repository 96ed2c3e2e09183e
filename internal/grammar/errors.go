package grammar

import "errors"

// ErrValidationInconclusive is the sentinel wrapped by [ValidationInconclusiveError].
// Check for it with errors.Is when the exact kind does not matter.
var ErrValidationInconclusive = errors.New("grammar: validation inconclusive")

// RuleBackendError wraps a failure talking to the rule backend (transport
// failure, timeout, or an unexpected HTTP status). The pipeline treats it
// as "the rule backend is unavailable" and degrades rather than failing
// the whole request — see internal/grammar/pipeline.
type RuleBackendError struct {
	Op  string
	Err error
}

func (e *RuleBackendError) Error() string {
	return "rule backend: " + e.Op + ": " + e.Err.Error()
}

func (e *RuleBackendError) Unwrap() error { return e.Err }

// ModelBackendError wraps a failure talking to the model backend. Unlike
// RuleBackendError, a malformed (but HTTP-successful) response is not an
// error at all — it is decoded as "no correction produced" by
// internal/grammar/modelclient.
type ModelBackendError struct {
	Op  string
	Err error
}

func (e *ModelBackendError) Error() string {
	return "model backend: " + e.Op + ": " + e.Err.Error()
}

func (e *ModelBackendError) Unwrap() error { return e.Err }

// ValidationInconclusiveError is returned by the validator when it cannot
// determine whether a candidate correction is acceptable because the rule
// backend itself failed during revalidation. It wraps [ErrValidationInconclusive]
// so callers can use errors.Is without caring about the underlying cause.
type ValidationInconclusiveError struct {
	Err error
}

func (e *ValidationInconclusiveError) Error() string {
	return "validation inconclusive: " + e.Err.Error()
}

func (e *ValidationInconclusiveError) Unwrap() error {
	return errors.Join(ErrValidationInconclusive, e.Err)
}
