package decant

// Policy is an ordered, non-empty set of acceptable media types. The
// first entry is the primary type used to tag outbound payloads.
//
// A Policy is a pure value with no registry behind it: each converter
// holds exactly one instance, so integrations with different
// acceptance rules never share state. The zero Policy accepts nothing
// and has no primary; construct one with NewPolicy or DefaultPolicy.
type Policy struct {
	types []MediaType
}

// NewPolicy builds a policy that accepts primary and the given
// additional media types, tagging outbound payloads with primary.
func NewPolicy(primary MediaType, additional ...MediaType) Policy {
	types := make([]MediaType, 0, 1+len(additional))
	types = append(types, primary)
	types = append(types, additional...)
	return Policy{types: types}
}

// DefaultPolicy accepts exactly application/json.
func DefaultPolicy() Policy {
	return NewPolicy(TypeJSON)
}

// Accepts reports whether the declared media type is acceptable.
// A body with no determinable content type (nil) is never acceptable.
func (p Policy) Accepts(declared *MediaType) bool {
	if declared == nil {
		return false
	}
	for _, mt := range p.types {
		if mt.Matches(*declared) {
			return true
		}
	}
	return false
}

// Primary returns the media type used to tag outbound payloads.
func (p Policy) Primary() MediaType {
	if len(p.types) == 0 {
		return MediaType{}
	}
	return p.types[0]
}

// MediaTypes returns the accepted media types in acceptance order.
// The returned slice is a copy.
func (p Policy) MediaTypes() []MediaType {
	out := make([]MediaType, len(p.types))
	copy(out, p.types)
	return out
}
