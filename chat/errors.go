// Package chat implements the natural-language-to-SQL pipeline:
// schema snapshot → conversion prompt → model call → read-only gate →
// query execution → summary prompt → model call.
//
// Design decisions:
//   - One linear pass per request, short-circuiting on the first failure.
//     No retries; one attempt per external call.
//   - The model is untrusted input. Its SQL goes through an independent
//     read-only gate before touching the database, regardless of what
//     the prompt instructed.
//   - Failures carry a Kind so callers can report them uniformly without
//     string matching.
package chat

import "fmt"

// Kind classifies a pipeline failure.
type Kind string

const (
	// KindDatabaseUnavailable: the schema snapshot could not be read.
	KindDatabaseUnavailable Kind = "database_unavailable"
	// KindLLMFailure: the model call itself failed (network, timeout,
	// non-2xx status).
	KindLLMFailure Kind = "llm_failure"
	// KindMalformedModelResponse: the model reply was not the expected
	// JSON object.
	KindMalformedModelResponse Kind = "malformed_model_response"
	// KindEmptyGeneration: the model produced neither SQL nor an error.
	KindEmptyGeneration Kind = "empty_generation"
	// KindUnsafeQuery: the generated SQL failed the read-only gate.
	KindUnsafeQuery Kind = "unsafe_query"
	// KindQueryExecution: the database rejected the generated SQL.
	KindQueryExecution Kind = "query_execution_error"
	// KindModelRefusal: the model itself declined the request; Message
	// carries the model's own explanation verbatim.
	KindModelRefusal Kind = "model_refusal"
)

// Error is a kind-tagged pipeline failure. Message is safe to show to
// the user; SQL, when set, preserves the triggering query for diagnostics.
type Error struct {
	Kind    Kind
	Message string
	// SQL is the generated query that triggered the failure, if any.
	SQL string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// newError builds an Error wrapping an underlying cause.
func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}
