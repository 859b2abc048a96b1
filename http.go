package decant

import (
	"context"
	"io"
	"iter"
	"net/http"
)

// HTTP entity helpers. The host HTTP layer stays opaque to the
// converter: these adapters only move bytes and the declared
// Content-Type header across the boundary.

// DecodeRequest drains the request body and converts it through c,
// gating on the request's declared Content-Type.
func DecodeRequest[T any](c *Converter[T], r *http.Request) (T, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.Unmarshal(r.Context(), body, r.Header.Get("Content-Type"))
}

// DecodeRequestStream converts the request body as one array document
// into a lazy sequence, gating on the request's declared Content-Type.
// The sequence reads from the request body directly; it must be
// drained or abandoned before the handler returns.
func DecodeRequestStream[T any](c *Converter[T], r *http.Request) (iter.Seq2[T, error], error) {
	return c.UnmarshalStream(r.Context(), r.Body, r.Header.Get("Content-Type"))
}

// EncodeResponse converts v through c and writes it to w, setting the
// Content-Type header to the policy's primary media type.
func EncodeResponse[T any](ctx context.Context, c *Converter[T], w http.ResponseWriter, v T) error {
	data, mt, err := c.Marshal(ctx, v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", mt.String())
	_, err = w.Write(data)
	return err
}

// EncodeResponseStream writes seq to w as one array document, setting
// the Content-Type header to the policy's primary media type. Elements
// are encoded as the sequence produces them; the response is never
// buffered whole.
func EncodeResponseStream[T any](ctx context.Context, c *Converter[T], w http.ResponseWriter, seq iter.Seq[T]) error {
	w.Header().Set("Content-Type", c.policy.Primary().String())
	_, err := c.EncodeStream(ctx, w, seq)
	return err
}
