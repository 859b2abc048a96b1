package decant

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrEmptyBody indicates the entity carried no bytes at all.
	ErrEmptyBody = errors.New("empty body")

	// ErrUnsupportedContentType indicates the declared content type
	// is not accepted by the converter's policy.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrParse indicates the payload was syntactically malformed or
	// could not be mapped onto the target type.
	ErrParse = errors.New("parse failed")

	// ErrValidation indicates a decoded value violated a construction
	// precondition.
	ErrValidation = errors.New("validation failed")

	// ErrStreamingUnsupported indicates a streaming operation was
	// invoked on a converter whose codec lacks the StreamCodec
	// capability.
	ErrStreamingUnsupported = errors.New("codec does not support streaming")
)

// ParseError reports syntactically malformed input. The message is the
// underlying parser's diagnostic, preserved verbatim: consumers match
// on exact text.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return e.Msg
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// ValidationError reports a decoded value that violated a construction
// precondition. The message is the validator's diagnostic, preserved
// verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ContentTypeError reports a declared content type the policy rejects.
// Received is nil when the entity carried no determinable content type.
type ContentTypeError struct {
	Received *MediaType
	Accepted Policy
}

func (e *ContentTypeError) Error() string {
	types := e.Accepted.MediaTypes()
	accepted := make([]string, 0, len(types))
	for _, mt := range types {
		accepted = append(accepted, mt.String())
	}
	if e.Received == nil {
		return fmt.Sprintf("unsupported content type: none supplied, accepted: %s",
			strings.Join(accepted, ", "))
	}
	return fmt.Sprintf("unsupported content type %q, accepted: %s",
		e.Received.String(), strings.Join(accepted, ", "))
}

func (e *ContentTypeError) Unwrap() error {
	return ErrUnsupportedContentType
}

// ElementError attributes a streaming conversion failure to the
// zero-based position of the array element that caused it. Err holds
// the same taxonomy variant a scalar conversion of that element would
// produce, with its diagnostic untouched.
type ElementError struct {
	Index int
	Err   error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("element %d: %v", e.Index, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// newParseError wraps a malformed-input diagnostic.
func newParseError(cause error) error {
	return &ParseError{Msg: cause.Error()}
}

// newValidationError wraps a precondition diagnostic.
func newValidationError(cause error) error {
	return &ValidationError{Msg: cause.Error()}
}

// newElementError attributes err to the element at index.
func newElementError(index int, err error) error {
	return &ElementError{Index: index, Err: err}
}
