// Package dedup builds duplicate keys for records and filters incoming
// batches against what an archive already holds.
package dedup

import (
	"strings"

	"matchdata/internal/record"
)

const separator = "|"

// KeyField is one component of a duplicate key. The first listed column
// present with a non-empty value supplies it.
type KeyField struct {
	Names []string
}

// Field is shorthand for a KeyField.
func Field(names ...string) KeyField {
	return KeyField{Names: names}
}

// Key is an ordered list of key components.
type Key []KeyField

// Of returns the duplicate key of r. ok is false when every component is
// empty; such records can be neither indexed nor compared.
func (k Key) Of(r record.Record) (string, bool) {
	parts := make([]string, len(k))
	valid := false
	for i, f := range k {
		part := strings.ToLower(strings.TrimSpace(r.FirstText(f.Names...)))
		if part != "" {
			valid = true
		}
		parts[i] = part
	}
	if !valid {
		return "", false
	}
	return strings.Join(parts, separator), true
}

// Index is the set of keys already present in an archive.
type Index struct {
	keys    map[string]struct{}
	invalid int
}

// NewIndex collects the valid keys of existing records.
func NewIndex(existing []record.Record, key Key) *Index {
	idx := &Index{keys: make(map[string]struct{}, len(existing))}
	for _, r := range existing {
		k, ok := key.Of(r)
		if !ok {
			idx.invalid++
			continue
		}
		idx.keys[k] = struct{}{}
	}
	return idx
}

// Contains reports whether k is indexed.
func (idx *Index) Contains(k string) bool {
	_, ok := idx.keys[k]
	return ok
}

// Len returns the number of distinct keys.
func (idx *Index) Len() int { return len(idx.keys) }

// Invalid returns how many existing records had no usable key.
func (idx *Index) Invalid() int { return idx.invalid }

// Result reports what Filter did with an incoming batch.
type Result struct {
	Kept []record.Record
	// External counts records already present in the index.
	External int
	// Internal counts repeats within the incoming batch itself.
	Internal int
	// Invalid counts records dropped for having an empty key.
	Invalid int
}

// Filter keeps incoming records whose key is neither indexed nor seen
// earlier in the same batch, preserving first-seen order. The index is not
// modified.
func Filter(incoming []record.Record, idx *Index, key Key) Result {
	var res Result
	batch := make(map[string]struct{}, len(incoming))
	for _, r := range incoming {
		k, ok := key.Of(r)
		switch {
		case !ok:
			res.Invalid++
		case idx != nil && idx.Contains(k):
			res.External++
		default:
			if _, seen := batch[k]; seen {
				res.Internal++
				continue
			}
			batch[k] = struct{}{}
			res.Kept = append(res.Kept, r)
		}
	}
	return res
}
