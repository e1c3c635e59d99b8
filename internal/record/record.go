package record

// Record is an ordered column name to Value mapping. Setting an existing
// column replaces its value in place without changing the column order.
type Record struct {
	keys   []string
	values map[string]Value
}

// New returns an empty record with room for n columns.
func New(n int) Record {
	return Record{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// Set assigns a value, appending the column when it is new.
func (r *Record) Set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value for key; ok is false when the column is absent.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether the column exists.
func (r Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Keys returns the column names in insertion order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns.
func (r Record) Len() int { return len(r.keys) }

// FirstText returns the text of the first listed column that is present and
// not empty, or "" when none is.
func (r Record) FirstText(names ...string) string {
	for _, name := range names {
		if v, ok := r.values[name]; ok && !v.IsEmpty() {
			if text := v.Text(); text != "" {
				return text
			}
		}
	}
	return ""
}
