// Package decant bridges typed application values and their wire
// representation inside an HTTP entity pipeline.
//
// The package offers a generic Converter that negotiates an entity's
// declared content type against an acceptance Policy before decoding,
// converts bytes to typed values and back through a pluggable Codec,
// and classifies failures into a small, stable taxonomy that callers
// can match with errors.Is and errors.As.
//
// # Conversion pipeline
//
// Inbound conversion runs four stages in strict order:
//
//  1. emptiness gate: a zero-length body is ErrEmptyBody
//  2. content-type gate: a declared type the Policy rejects is a
//     ContentTypeError
//  3. decode: malformed input surfaces as a ParseError carrying the
//     underlying parser diagnostic verbatim
//  4. check: value-level preconditions surface as a ValidationError
//     carrying the validator diagnostic verbatim
//
// Outbound conversion is symmetric, does not consult the acceptance
// gate, and tags output with the Policy's primary media type.
//
// # Basic Usage
//
//	type Widget struct {
//	    Bar string `json:"bar" check:"prefix=bar"`
//	}
//
//	conv, _ := decant.NewConverter[Widget](json.New())
//
//	// Inbound: bytes plus declared content type.
//	w, err := conv.Unmarshal(ctx, body, "application/json")
//
//	// Outbound: bytes plus the policy's primary media type.
//	data, mt, _ := conv.Marshal(ctx, w)
//
// # Streaming
//
// Converters built on a codec with the StreamCodec capability translate
// between a byte stream holding one JSON array and a lazy sequence of
// typed values, one element at a time:
//
//	seq, err := conv.UnmarshalStream(ctx, body, "application/json")
//	for v, err := range seq {
//	    ...
//	}
//
// The whole array is never materialized. The returned sequence is
// single-pass and pull-driven: breaking out of the loop stops all
// parsing, and a failure at element k ends the sequence at k with an
// ElementError wrapping the same taxonomy variant a scalar conversion
// would produce.
//
// # Content-Type Policies
//
// A Policy is an ordered, immutable set of acceptable media types whose
// first entry tags outbound payloads. The default accepts exactly
// application/json. Policies are plain values passed per converter, so
// concurrent integrations with different acceptance rules never share
// state:
//
//	conv, _ := decant.NewConverter[Widget](json.New(),
//	    decant.WithPolicy(decant.NewPolicy(decant.TypeJSON, decant.TypeJSONHome)))
//
// # Validation
//
// Decoded values are checked before they are released. Types may
// implement Validatable for custom preconditions, or declare rules on
// string fields via the check struct tag:
//
//	check:"nonempty"        - must not be empty
//	check:"prefix=bar"      - must start with "bar"
//	check:"suffix=.json"    - must end with ".json"
//	check:"oneof=a|b|c"     - must equal one of the listed values
//
// # Codec Providers
//
// The following codec implementations ship as subpackages:
//
//   - json - JSON encoding (application/json), scalar and streaming
//   - msgpack - MessagePack encoding (application/msgpack), scalar
//   - yaml - YAML encoding (application/yaml), scalar
package decant

import "io"

// Codec provides content-type aware marshaling.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// Classifier is an optional Codec capability that distinguishes
// malformed input from other unmarshal failures.
//
// When a codec implements Classifier, the converter turns failures for
// which IsMalformed reports true into ParseError values and passes
// every other failure through untouched as an integration defect.
// Codecs without the capability have all unmarshal failures treated as
// malformed input.
type Classifier interface {
	// IsMalformed reports whether err, returned by Unmarshal, was
	// caused by input the codec could not parse or map onto the
	// target type.
	IsMalformed(err error) bool
}

// StreamCodec is an optional Codec capability for element-wise
// conversion of array payloads. Codecs without it only support scalar
// conversion; streaming calls on such converters fail with
// ErrStreamingUnsupported.
type StreamCodec interface {
	Codec

	// NewArrayEncoder returns an encoder that writes elements to w as
	// one array document.
	NewArrayEncoder(w io.Writer) ArrayEncoder

	// NewArrayDecoder returns a decoder that reads elements of one
	// array document from r.
	NewArrayDecoder(r io.Reader) ArrayDecoder
}

// ArrayEncoder encodes a sequence of values into one array document.
//
// The encoder is stateful: it owns the array delimiters and the
// separators between elements. Close emits the trailing structure and
// must be called to finish the document; it is safe to call more than
// once. An empty sequence still produces a complete empty array.
type ArrayEncoder interface {
	// Encode appends one element to the array.
	Encode(v any) error

	// Close terminates the array document.
	Close() error
}

// ArrayDecoder decodes one array document element by element,
// maintaining delimiter and separator state across arbitrary chunk
// boundaries of the underlying reader.
//
// Usage follows the bufio.Scanner shape: More reports whether another
// element is available, Decode consumes it, and Err returns the first
// structural error encountered, if any.
type ArrayDecoder interface {
	// More reports whether the array has another element.
	More() bool

	// Decode reads the next element into v.
	Decode(v any) error

	// Err returns the first error encountered while walking the
	// array structure. It never returns io.EOF.
	Err() error
}

// Validatable allows types to enforce construction preconditions on
// decode. When a converter's value type implements Validatable, the
// converter calls Validate on every decoded value - scalar results and
// stream elements alike - and surfaces a non-nil error as a
// ValidationError with the message preserved verbatim.
//
// Validate runs after check tag rules, and only if those pass.
type Validatable interface {
	Validate() error
}
