package decant_test

import (
	"bytes"
	"errors"
	"io"
	"iter"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/zoobzio/decant"
	"github.com/zoobzio/decant/json"
)

func streamConverter(t *testing.T) *decant.Converter[Widget] {
	t.Helper()
	conv, err := decant.NewConverter[Widget](json.New())
	if err != nil {
		t.Fatalf("NewConverter() error: %v", err)
	}
	return conv
}

func TestStream_RoundTrip(t *testing.T) {
	conv := streamConverter(t)

	widgets := []Widget{{Bar: "bar-0"}, {Bar: "bar-1"}, {Bar: "bar-2"}}

	rc, mt, err := conv.MarshalStream(t.Context(), slices.Values(widgets))
	if err != nil {
		t.Fatalf("MarshalStream() error: %v", err)
	}
	defer rc.Close()

	if mt != decant.TypeJSON {
		t.Errorf("MarshalStream() media type = %v, want %v", mt, decant.TypeJSON)
	}

	seq, err := conv.UnmarshalStream(t.Context(), rc, mt.String())
	if err != nil {
		t.Fatalf("UnmarshalStream() error: %v", err)
	}

	var got []Widget
	for w, err := range seq {
		if err != nil {
			t.Fatalf("stream element error: %v", err)
		}
		got = append(got, w)
	}

	if !slices.Equal(got, widgets) {
		t.Errorf("round-trip = %+v, want %+v in order", got, widgets)
	}
}

func TestStream_MarshalEmptySequence(t *testing.T) {
	conv := streamConverter(t)

	var buf bytes.Buffer
	n, err := conv.EncodeStream(t.Context(), &buf, slices.Values([]Widget{}))
	if err != nil {
		t.Fatalf("EncodeStream() error: %v", err)
	}
	if n != 0 {
		t.Errorf("EncodeStream() count = %d, want 0", n)
	}
	if buf.String() != "[]" {
		t.Errorf("EncodeStream() output = %q, want %q", buf.String(), "[]")
	}
}

func TestStream_EncodeStreamOutput(t *testing.T) {
	conv := streamConverter(t)

	var buf bytes.Buffer
	n, err := conv.EncodeStream(t.Context(), &buf, slices.Values([]Widget{{Bar: "bara"}, {Bar: "barb"}}))
	if err != nil {
		t.Fatalf("EncodeStream() error: %v", err)
	}
	if n != 2 {
		t.Errorf("EncodeStream() count = %d, want 2", n)
	}

	want := `[{"bar":"bara"},{"bar":"barb"}]`
	if buf.String() != want {
		t.Errorf("EncodeStream() output = %q, want %q", buf.String(), want)
	}
}

func TestStream_UnmarshalEmptyStream(t *testing.T) {
	conv := streamConverter(t)

	_, err := conv.UnmarshalStream(t.Context(), strings.NewReader(""), "application/json")
	if !errors.Is(err, decant.ErrEmptyBody) {
		t.Errorf("UnmarshalStream(empty) error = %v, want ErrEmptyBody", err)
	}
}

func TestStream_UnmarshalEmptyPrecedesContentType(t *testing.T) {
	conv := streamConverter(t)

	_, err := conv.UnmarshalStream(t.Context(), strings.NewReader(""), "text/plain")
	if !errors.Is(err, decant.ErrEmptyBody) {
		t.Errorf("UnmarshalStream(empty, text/plain) error = %v, want ErrEmptyBody", err)
	}
}

func TestStream_UnmarshalContentTypeGate(t *testing.T) {
	conv := streamConverter(t)

	_, err := conv.UnmarshalStream(t.Context(), strings.NewReader(`[{"bar":"bar"}]`), "text/plain")
	if !errors.Is(err, decant.ErrUnsupportedContentType) {
		t.Errorf("UnmarshalStream() error = %v, want ErrUnsupportedContentType", err)
	}
}

func TestStream_ElementValidationError(t *testing.T) {
	conv := streamConverter(t)

	body := `[{"bar":"bar-0"},{"bar":"oops"},{"bar":"bar-2"}]`
	seq, err := conv.UnmarshalStream(t.Context(), strings.NewReader(body), "application/json")
	if err != nil {
		t.Fatalf("UnmarshalStream() error: %v", err)
	}

	var got []Widget
	var streamErr error
	for w, err := range seq {
		if err != nil {
			streamErr = err
			break
		}
		got = append(got, w)
	}

	if len(got) != 1 || got[0].Bar != "bar-0" {
		t.Errorf("elements before the failure = %+v, want the first element only", got)
	}
	if !errors.Is(streamErr, decant.ErrValidation) {
		t.Fatalf("stream error = %v, want ErrValidation", streamErr)
	}

	var elemErr *decant.ElementError
	if !errors.As(streamErr, &elemErr) {
		t.Fatal("stream error should be an *ElementError")
	}
	if elemErr.Index != 1 {
		t.Errorf("ElementError.Index = %d, want 1", elemErr.Index)
	}

	var valErr *decant.ValidationError
	if !errors.As(streamErr, &valErr) {
		t.Fatal("stream error should wrap a *ValidationError")
	}
	if valErr.Msg != `requirement failed: Bar must start with "bar"` {
		t.Errorf("ValidationError.Msg = %q", valErr.Msg)
	}
}

func TestStream_ElementParseError(t *testing.T) {
	conv := streamConverter(t)

	body := `[{"bar":"bar-0"},{"bar":5}]`
	seq, err := conv.UnmarshalStream(t.Context(), strings.NewReader(body), "application/json")
	if err != nil {
		t.Fatalf("UnmarshalStream() error: %v", err)
	}

	var streamErr error
	count := 0
	for _, err := range seq {
		if err != nil {
			streamErr = err
			break
		}
		count++
	}

	if count != 1 {
		t.Errorf("yielded %d elements before the failure, want 1", count)
	}
	if !errors.Is(streamErr, decant.ErrParse) {
		t.Fatalf("stream error = %v, want ErrParse", streamErr)
	}

	var elemErr *decant.ElementError
	if !errors.As(streamErr, &elemErr) {
		t.Fatal("stream error should be an *ElementError")
	}
	if elemErr.Index != 1 {
		t.Errorf("ElementError.Index = %d, want 1", elemErr.Index)
	}
}

func TestStream_TruncatedArray(t *testing.T) {
	conv := streamConverter(t)

	body := `[{"bar":"bar-0"},`
	seq, err := conv.UnmarshalStream(t.Context(), strings.NewReader(body), "application/json")
	if err != nil {
		t.Fatalf("UnmarshalStream() error: %v", err)
	}

	var streamErr error
	for _, err := range seq {
		if err != nil {
			streamErr = err
			break
		}
	}
	if !errors.Is(streamErr, decant.ErrParse) {
		t.Errorf("stream error = %v, want ErrParse for a truncated array", streamErr)
	}
}

func TestStream_NotAnArray(t *testing.T) {
	conv := streamConverter(t)

	seq, err := conv.UnmarshalStream(t.Context(), strings.NewReader(`{"bar":"bar"}`), "application/json")
	if err != nil {
		t.Fatalf("UnmarshalStream() error: %v", err)
	}

	var streamErr error
	for _, err := range seq {
		if err != nil {
			streamErr = err
			break
		}
	}
	if !errors.Is(streamErr, decant.ErrParse) {
		t.Errorf("stream error = %v, want ErrParse for a non-array document", streamErr)
	}
}

func TestStream_ConsumerBreakStopsParsing(t *testing.T) {
	conv := streamConverter(t)

	// Elements past the break point are deliberately invalid: if the
	// converter parsed ahead, the loop below would observe an error.
	body := `[{"bar":"bar-0"},{"bar":"bar-1"},{"bar":THIS IS NOT JSON`
	seq, err := conv.UnmarshalStream(t.Context(), strings.NewReader(body), "application/json")
	if err != nil {
		t.Fatalf("UnmarshalStream() error: %v", err)
	}

	var got []Widget
	for w, err := range seq {
		if err != nil {
			t.Fatalf("stream element error before break: %v", err)
		}
		got = append(got, w)
		if len(got) == 2 {
			break
		}
	}

	if len(got) != 2 {
		t.Errorf("consumed %d elements, want 2", len(got))
	}
}

func TestStream_MarshalCancellation(t *testing.T) {
	conv := streamConverter(t)

	pulled := make(chan struct{}, 64)
	unbounded := func(yield func(Widget) bool) {
		for i := 0; ; i++ {
			pulled <- struct{}{}
			if !yield(Widget{Bar: "bar"}) {
				close(pulled)
				return
			}
		}
	}

	rc, _, err := conv.MarshalStream(t.Context(), iter.Seq[Widget](unbounded))
	if err != nil {
		t.Fatalf("MarshalStream() error: %v", err)
	}

	// Pull a little, then abandon the stream.
	buf := make([]byte, 16)
	if _, err := io.ReadFull(rc, buf); err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	rc.Close()

	// The producer must notice and stop pulling from the sequence.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-pulled:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("producer kept pulling after the stream was closed")
		}
	}
}

func TestStream_UnsupportedCodec(t *testing.T) {
	conv, err := decant.NewConverter[Widget](&testCodec{})
	if err != nil {
		t.Fatalf("NewConverter() error: %v", err)
	}

	if _, _, err := conv.MarshalStream(t.Context(), slices.Values([]Widget{})); !errors.Is(err, decant.ErrStreamingUnsupported) {
		t.Errorf("MarshalStream() error = %v, want ErrStreamingUnsupported", err)
	}
	if _, err := conv.UnmarshalStream(t.Context(), strings.NewReader("[]"), "application/json"); !errors.Is(err, decant.ErrStreamingUnsupported) {
		t.Errorf("UnmarshalStream() error = %v, want ErrStreamingUnsupported", err)
	}
}

func TestStream_ChunkedInput(t *testing.T) {
	conv := streamConverter(t)

	// One byte per read: no chunk boundary aligns with an element.
	body := &oneByteReader{data: []byte(`[{"bar":"bar-0"}, {"bar":"bar-1"}]`)}
	seq, err := conv.UnmarshalStream(t.Context(), body, "application/json")
	if err != nil {
		t.Fatalf("UnmarshalStream() error: %v", err)
	}

	var got []Widget
	for w, err := range seq {
		if err != nil {
			t.Fatalf("stream element error: %v", err)
		}
		got = append(got, w)
	}
	if len(got) != 2 || got[0].Bar != "bar-0" || got[1].Bar != "bar-1" {
		t.Errorf("chunked decode = %+v", got)
	}
}

// oneByteReader yields one byte per Read call.
type oneByteReader struct {
	data []byte
	pos  int
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}
