package correction

import "fmt"

// The correction pipeline distinguishes three recoverable failure classes.
// None of them ever escapes [Orchestrator.Correct]; they shape which fallback
// fires and what warning the response carries.

// ValidationError reports a malformed correction request. It is produced by
// [ParseRequest] at the boundary; the internal pipeline never sees
// unvalidated data.
type ValidationError struct {
	// Field names the offending request field, when known.
	Field string

	// Err is the underlying cause.
	Err error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("correction: invalid request field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("correction: invalid request: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// RetrievalError reports the failure of a single candidate-retrieval call.
// The failed query's contribution is dropped and the pipeline proceeds with
// whatever other candidates were gathered.
type RetrievalError struct {
	// Query is the search query whose retrieval failed.
	Query string

	// Err is the underlying cause.
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("correction: retrieve candidates for %q: %v", e.Query, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// GenerativeError reports a failure of the generative correction stage
// (timeout, auth failure, unparsable model output). The orchestrator recovers
// by falling back to rule-based correction.
type GenerativeError struct {
	// Err is the underlying cause.
	Err error
}

func (e *GenerativeError) Error() string {
	return fmt.Sprintf("correction: generative stage: %v", e.Err)
}

func (e *GenerativeError) Unwrap() error { return e.Err }
