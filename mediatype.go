package decant

import (
	"errors"
	"mime"
	"strings"
)

var errNoSubtype = errors.New("media type missing subtype")

// MediaType identifies a content type as type/subtype with an optional
// pinned charset. It is an immutable value; equality is structural.
type MediaType struct {
	Type    string
	Subtype string
	Charset string
}

// Media types of the codecs shipped with this module.
var (
	TypeJSON     = MediaType{Type: "application", Subtype: "json"}
	TypeJSONHome = MediaType{Type: "application", Subtype: "json-home"}
	TypeMsgpack  = MediaType{Type: "application", Subtype: "msgpack"}
	TypeYAML     = MediaType{Type: "application", Subtype: "yaml"}
)

// ParseMediaType parses a declared content type string such as
// "application/json; charset=utf-8" into a MediaType. Type and subtype
// are lowered; parameters other than charset are discarded.
func ParseMediaType(s string) (MediaType, error) {
	mediatype, params, err := mime.ParseMediaType(s)
	if err != nil {
		return MediaType{}, err
	}

	primary, sub, ok := strings.Cut(mediatype, "/")
	if !ok {
		// mime.ParseMediaType accepts bare type names; the wire
		// contract requires type/subtype.
		return MediaType{}, errNoSubtype
	}

	return MediaType{
		Type:    primary,
		Subtype: sub,
		Charset: params["charset"],
	}, nil
}

// String renders the media type in wire form.
func (m MediaType) String() string {
	s := m.Type + "/" + m.Subtype
	if m.Charset != "" {
		s += "; charset=" + m.Charset
	}
	return s
}

// Matches reports whether candidate is acceptable where m is expected.
// Type and subtype must match exactly; a charset is only constrained
// when m pins one.
func (m MediaType) Matches(candidate MediaType) bool {
	if m.Type != candidate.Type || m.Subtype != candidate.Subtype {
		return false
	}
	if m.Charset != "" && m.Charset != candidate.Charset {
		return false
	}
	return true
}
