// Package json provides a JSON codec implementation with scalar and
// streaming support.
package json

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/zoobzio/decant"
)

// errNotArray reports a document whose top-level value is not an array.
var errNotArray = errors.New("json: document is not an array")

// jsonCodec implements decant.StreamCodec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() decant.StreamCodec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// IsMalformed implements decant.Classifier. Syntax errors, type
// mismatches against the target, and truncated documents are
// malformed input; a bad unmarshal target is not.
func (c *jsonCodec) IsMalformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return true
	case errors.As(err, &typeErr):
		return true
	case errors.Is(err, io.ErrUnexpectedEOF):
		return true
	case errors.Is(err, errNotArray):
		return true
	}
	// encoding/json reports a truncated document as a bare error.
	return err != nil && err.Error() == "unexpected end of JSON input"
}

// NewArrayEncoder implements decant.StreamCodec.
func (c *jsonCodec) NewArrayEncoder(w io.Writer) decant.ArrayEncoder {
	return &arrayEncoder{w: w}
}

// NewArrayDecoder implements decant.StreamCodec.
func (c *jsonCodec) NewArrayDecoder(r io.Reader) decant.ArrayDecoder {
	return &arrayDecoder{dec: json.NewDecoder(r)}
}

// arrayEncoder writes one JSON array incrementally. It owns the
// delimiters: the opening bracket is emitted with the first element,
// separators between elements, and the closing bracket on Close.
type arrayEncoder struct {
	w      io.Writer
	n      int
	closed bool
}

func (e *arrayEncoder) Encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	sep := byte('[')
	if e.n > 0 {
		sep = ','
	}
	if _, err := e.w.Write([]byte{sep}); err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	e.n++
	return nil
}

func (e *arrayEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if e.n == 0 {
		_, err := e.w.Write([]byte("[]"))
		return err
	}
	_, err := e.w.Write([]byte{']'})
	return err
}

// arrayDecoder walks one JSON array token by token. json.Decoder owns
// the chunk-boundary problem: tokens and element values are assembled
// correctly regardless of how the underlying reader splits its bytes.
type arrayDecoder struct {
	dec     *json.Decoder
	started bool
	done    bool
	err     error
}

func (d *arrayDecoder) More() bool {
	if d.err != nil || d.done {
		return false
	}

	if !d.started {
		tok, err := d.dec.Token()
		if err != nil {
			d.fail(err)
			return false
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			d.fail(errNotArray)
			return false
		}
		d.started = true
	}

	if d.dec.More() {
		return true
	}

	// Consume the closing bracket.
	if _, err := d.dec.Token(); err != nil {
		d.fail(err)
		return false
	}
	d.done = true
	return false
}

func (d *arrayDecoder) Decode(v any) error {
	if d.err != nil {
		return d.err
	}
	if err := d.dec.Decode(v); err != nil {
		d.fail(err)
		return d.err
	}
	return nil
}

func (d *arrayDecoder) Err() error {
	return d.err
}

// fail records the first structural error. A clean EOF mid-array means
// the document was truncated.
func (d *arrayDecoder) fail(err error) {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	d.err = err
	d.done = true
}
