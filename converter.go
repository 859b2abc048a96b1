package decant

import (
	"context"
	"reflect"
	"time"
)

// Converter bridges values of type T and their wire representation.
//
// A Converter is immutable after construction and safe for concurrent
// use: each conversion is an independent, stateless operation, and the
// only shared configuration is the read-only Policy value.
type Converter[T any] struct {
	codec    Codec
	policy   Policy
	plan     *checkPlan
	typeName string
}

// converterOptions collects construction options.
type converterOptions struct {
	policy    Policy
	hasPolicy bool
}

// Option configures a Converter at construction time.
type Option func(*converterOptions)

// WithPolicy overrides the default content-type policy for this
// converter instance.
func WithPolicy(p Policy) Option {
	return func(o *converterOptions) {
		o.policy = p
		o.hasPolicy = true
	}
}

// NewConverter creates a Converter for type T over the given codec.
// Without options the converter accepts exactly application/json.
//
// Construction compiles T's check tag rules; an invalid rule is
// reported here, not at conversion time.
func NewConverter[T any](codec Codec, opts ...Option) (*Converter[T], error) {
	plan, err := getOrBuildCheckPlan[T]()
	if err != nil {
		return nil, err
	}

	var options converterOptions
	for _, opt := range opts {
		opt(&options)
	}

	policy := DefaultPolicy()
	if options.hasPolicy {
		policy = options.policy
	}

	c := &Converter[T]{
		codec:    codec,
		policy:   policy,
		plan:     plan,
		typeName: plan.typeName,
	}

	emitConverterCreated(context.Background(), codec.ContentType(), plan.typeName)
	return c, nil
}

// Policy returns the converter's acceptance policy.
func (c *Converter[T]) Policy() Policy {
	return c.policy
}

// Marshal encodes v and tags the payload with the policy's primary
// media type. A marshal failure is an integration defect, returned
// untouched rather than mapped into the conversion taxonomy.
func (c *Converter[T]) Marshal(ctx context.Context, v T) ([]byte, MediaType, error) {
	start := time.Now()
	emitMarshalStart(ctx, c.codec.ContentType(), c.typeName)

	data, err := c.codec.Marshal(v)
	emitMarshalComplete(ctx, c.codec.ContentType(), c.typeName, len(data), time.Since(start), err)
	if err != nil {
		return nil, MediaType{}, err
	}

	return data, c.policy.Primary(), nil
}

// Unmarshal decodes one complete payload into a value of type T.
//
// Failures are detected in strict precedence order:
//
//  1. zero-length data: ErrEmptyBody
//  2. declared content type rejected by the policy: ContentTypeError
//  3. malformed payload: ParseError
//  4. precondition violation: ValidationError
//
// The emptiness gate runs before the content-type gate, and no byte is
// parsed before both gates pass. On any failure no partially decoded
// value escapes.
func (c *Converter[T]) Unmarshal(ctx context.Context, data []byte, contentType string) (T, error) {
	start := time.Now()
	emitUnmarshalStart(ctx, c.codec.ContentType(), c.typeName)

	var retErr error
	defer func() {
		emitUnmarshalComplete(ctx, c.codec.ContentType(), c.typeName,
			len(data), time.Since(start), retErr)
	}()

	var zero T

	if len(data) == 0 {
		retErr = ErrEmptyBody
		return zero, retErr
	}

	if err := c.gateContentType(contentType); err != nil {
		retErr = err
		return zero, retErr
	}

	var obj T
	if err := c.codec.Unmarshal(data, &obj); err != nil {
		retErr = c.classify(err)
		return zero, retErr
	}

	if err := c.check(&obj); err != nil {
		retErr = err
		return zero, retErr
	}

	return obj, nil
}

// gateContentType rejects declared content types the policy does not
// accept. An absent or unparseable declaration counts as none, which
// no policy accepts.
func (c *Converter[T]) gateContentType(declared string) error {
	var received *MediaType
	if declared != "" {
		if mt, err := ParseMediaType(declared); err == nil {
			received = &mt
		}
	}
	if !c.policy.Accepts(received) {
		return &ContentTypeError{Received: received, Accepted: c.policy}
	}
	return nil
}

// classify maps a codec unmarshal failure onto the taxonomy. Failures
// the codec recognizes as malformed input become ParseError with the
// diagnostic verbatim; everything else passes through untouched as an
// integration defect.
func (c *Converter[T]) classify(err error) error {
	if cl, ok := c.codec.(Classifier); ok {
		if cl.IsMalformed(err) {
			return newParseError(err)
		}
		return err
	}
	return newParseError(err)
}

// check runs the decoded value through its construction preconditions:
// compiled check tag rules first, then the Validatable override when T
// implements it.
func (c *Converter[T]) check(obj *T) error {
	if len(c.plan.rules) > 0 {
		if err := c.plan.apply(reflect.ValueOf(obj).Elem()); err != nil {
			return newValidationError(err)
		}
	}
	if v, ok := any(obj).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return newValidationError(err)
		}
	}
	return nil
}
