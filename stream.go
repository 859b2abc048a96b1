package decant

import (
	"bufio"
	"context"
	"errors"
	"io"
	"iter"
	"time"
)

// streamCodec asserts the StreamCodec capability on the converter's
// codec.
func (c *Converter[T]) streamCodec() (StreamCodec, error) {
	sc, ok := c.codec.(StreamCodec)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	return sc, nil
}

// MarshalStream encodes seq as one array document, produced
// incrementally: element n is pulled from seq only when the consumer
// of the returned reader demands the bytes that need it, so
// backpressure propagates from the byte sink to the sequence producer
// and the array is never materialized.
//
// Closing the returned reader stops the producer; no background work
// survives an abandoned stream. An encode failure is an integration
// defect and surfaces as the reader's error.
//
// The payload is tagged with the policy's primary media type.
func (c *Converter[T]) MarshalStream(ctx context.Context, seq iter.Seq[T]) (io.ReadCloser, MediaType, error) {
	sc, err := c.streamCodec()
	if err != nil {
		return nil, MediaType{}, err
	}

	pr, pw := io.Pipe()
	go func() {
		start := time.Now()
		count := 0
		var retErr error
		defer func() {
			emitStreamMarshalComplete(ctx, c.codec.ContentType(), c.typeName,
				count, time.Since(start), retErr)
		}()

		enc := sc.NewArrayEncoder(pw)
		for v := range seq {
			if err := ctx.Err(); err != nil {
				retErr = err
				pw.CloseWithError(err)
				return
			}
			if err := enc.Encode(v); err != nil {
				retErr = err
				pw.CloseWithError(err)
				return
			}
			count++
		}
		if err := enc.Close(); err != nil {
			retErr = err
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()

	return pr, c.policy.Primary(), nil
}

// EncodeStream writes seq to w as one array document and returns the
// number of elements encoded. It is the direct-to-writer form of
// MarshalStream, used when the caller already owns the byte sink.
func (c *Converter[T]) EncodeStream(ctx context.Context, w io.Writer, seq iter.Seq[T]) (int, error) {
	sc, err := c.streamCodec()
	if err != nil {
		return 0, err
	}

	start := time.Now()
	count := 0
	var retErr error
	defer func() {
		emitStreamMarshalComplete(ctx, c.codec.ContentType(), c.typeName,
			count, time.Since(start), retErr)
	}()

	enc := sc.NewArrayEncoder(w)
	for v := range seq {
		if err := ctx.Err(); err != nil {
			retErr = err
			return count, retErr
		}
		if err := enc.Encode(v); err != nil {
			retErr = err
			return count, retErr
		}
		count++
	}
	retErr = enc.Close()
	return count, retErr
}

// UnmarshalStream converts a byte stream holding one array document
// into a lazy sequence of values of type T.
//
// The emptiness gate (zero bytes before end of input) and the
// content-type gate run here, before any parsing, with the same
// precedence as Unmarshal. The returned sequence is single-pass and
// pull-driven: each step parses exactly one element and runs it
// through the check stage; breaking out of the loop stops all parsing
// immediately. A failure at element k terminates the sequence there
// with an ElementError wrapping the scalar taxonomy variant for that
// element; a structural failure of the array itself surfaces as a
// ParseError.
func (c *Converter[T]) UnmarshalStream(ctx context.Context, r io.Reader, contentType string) (iter.Seq2[T, error], error) {
	sc, err := c.streamCodec()
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyBody
		}
		return nil, err
	}

	if err := c.gateContentType(contentType); err != nil {
		return nil, err
	}

	dec := sc.NewArrayDecoder(br)
	return func(yield func(T, error) bool) {
		start := time.Now()
		count := 0
		var retErr error
		defer func() {
			emitStreamUnmarshalComplete(ctx, c.codec.ContentType(), c.typeName,
				count, time.Since(start), retErr)
		}()

		var zero T
		for dec.More() {
			if err := ctx.Err(); err != nil {
				retErr = err
				yield(zero, err)
				return
			}

			var obj T
			if err := dec.Decode(&obj); err != nil {
				retErr = newElementError(count, c.classify(err))
				yield(zero, retErr)
				return
			}
			if err := c.check(&obj); err != nil {
				retErr = newElementError(count, err)
				yield(zero, retErr)
				return
			}
			if !yield(obj, nil) {
				return
			}
			count++
		}
		if err := dec.Err(); err != nil {
			retErr = c.classify(err)
			yield(zero, retErr)
		}
	}, nil
}
