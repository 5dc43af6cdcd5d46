package httpmsg

// headerField is one name/value pair as received (or as set by a handler),
// case preserved.
type headerField struct {
	name  string
	value string
}

// Header is an ordered, multi-valued header collection. Unlike net/http.Header
// it does not canonicalize names and it preserves the exact order and
// repetition of values as they were added — a test fixture needs to let the
// embedder observe headers exactly as they crossed the wire.
type Header struct {
	fields []headerField
}

// NewHeader returns an empty Header.
func NewHeader() Header {
	return Header{}
}

// Add appends a value for name, preserving any existing values for name.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, headerField{name: name, value: value})
}

// Set replaces all existing values for name (case-insensitive match) with
// the single given value, appending at the position of the first existing
// match or at the end if name is not present.
func (h *Header) Set(name, value string) {
	for i := range h.fields {
		if equalFold(h.fields[i].name, name) {
			h.fields[i].value = value
			h.removeAllExcept(name, i)
			return
		}
	}
	h.fields = append(h.fields, headerField{name: name, value: value})
}

func (h *Header) removeAllExcept(name string, keep int) {
	out := h.fields[:0]
	for i, f := range h.fields {
		if i == keep || !equalFold(f.name, name) {
			out = append(out, f)
		}
	}
	h.fields = out
}

// Del removes all values for name (case-insensitive).
func (h *Header) Del(name string) {
	out := h.fields[:0]
	for _, f := range h.fields {
		if !equalFold(f.name, name) {
			out = append(out, f)
		}
	}
	h.fields = out
}

// Get returns the first value for name (case-insensitive), or "" if absent.
func (h Header) Get(name string) string {
	for _, f := range h.fields {
		if equalFold(f.name, name) {
			return f.value
		}
	}
	return ""
}

// Values returns every value for name (case-insensitive), in insertion order.
// The returned slice is nil if name is absent.
func (h Header) Values(name string) []string {
	var out []string
	for _, f := range h.fields {
		if equalFold(f.name, name) {
			out = append(out, f.value)
		}
	}
	return out
}

// Has reports whether name is present at all.
func (h Header) Has(name string) bool {
	for _, f := range h.fields {
		if equalFold(f.name, name) {
			return true
		}
	}
	return false
}

// Count returns how many values are stored under name.
func (h Header) Count(name string) int {
	n := 0
	for _, f := range h.fields {
		if equalFold(f.name, name) {
			n++
		}
	}
	return n
}

// VisitAll calls fn once per stored field, in insertion order, with the name
// exactly as received/set (not canonicalized).
func (h Header) VisitAll(fn func(name, value string)) {
	for _, f := range h.fields {
		fn(f.name, f.value)
	}
}

// Clone returns an independent copy of h.
func (h Header) Clone() Header {
	fields := make([]headerField, len(h.fields))
	copy(fields, h.fields)
	return Header{fields: fields}
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
