package header

import "sort"

// NamedArgs carries fill arguments keyed by prefix+FieldName, e.g.
// "ecpriPayloadLength". It lives only for the duration of one fill.
type NamedArgs map[string]uint64

// Has reports whether the key is present.
func (a NamedArgs) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// SetDefault stores v under key only when the key is absent, so that
// caller-supplied values always win and repeated defaulting passes are
// idempotent.
func (a NamedArgs) SetDefault(key string, v uint64) {
	if _, ok := a[key]; !ok {
		a[key] = v
	}
}

// Clone returns an independent copy.
func (a NamedArgs) Clone() NamedArgs {
	out := make(NamedArgs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Keys returns the keys in sorted order, for deterministic logging.
func (a NamedArgs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
