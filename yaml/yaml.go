// Package yaml provides a YAML codec implementation.
package yaml

import (
	"errors"
	"strings"

	"github.com/zoobzio/decant"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements decant.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() decant.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Unmarshal decodes YAML data into v.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// IsMalformed implements decant.Classifier. Type mismatches and parser
// errors are malformed input; a bad unmarshal target is not.
func (c *yamlCodec) IsMalformed(err error) bool {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return true
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "yaml: unmarshal(") {
		return false
	}
	return strings.HasPrefix(msg, "yaml:")
}
