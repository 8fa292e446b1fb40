package templating

import "sort"

// Well-known rendering argument keys.
const (
	ArgURL     = "url"
	ArgElement = "element"
)

// Args maps argument names to the values exposed to a template.
type Args map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty, non-nil map.
func (a Args) Clone() Args {
	out := make(Args, len(a))
	for key, value := range a {
		out[key] = value
	}
	return out
}

// Merge returns a new Args holding a overlaid by each of others in order.
// Later values win.
func (a Args) Merge(others ...Args) Args {
	out := a.Clone()
	for _, other := range others {
		for key, value := range other {
			out[key] = value
		}
	}
	return out
}

// Keys returns the argument names in sorted order.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
