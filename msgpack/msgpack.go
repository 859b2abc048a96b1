// Package msgpack provides a MessagePack codec implementation.
package msgpack

import (
	"errors"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/decant"
)

// msgpackCodec implements decant.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() decant.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal decodes MessagePack data into v.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// IsMalformed implements decant.Classifier. Truncated input and decode
// failures are malformed; a nonsettable unmarshal target is not.
func (c *msgpackCodec) IsMalformed(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "msgpack: Decode(") {
		return false
	}
	return strings.HasPrefix(msg, "msgpack:")
}
