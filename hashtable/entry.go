package hashtable

import (
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// Entry is a key/value association stored in a [Table].
// The key is fixed when the entry is created; the value
// may be changed in place.
type Entry[K comparable, V any] struct {
	key   K
	value V
}

// NewEntry returns a new entry associating k with v.
func NewEntry[K comparable, V any](k K, v V) *Entry[K, V] {
	return &Entry[K, V]{
		key:   k,
		value: v,
	}
}

// Key returns the entry's key.
func (e *Entry[K, V]) Key() K {
	return e.key
}

// Value returns the entry's current value.
func (e *Entry[K, V]) Value() V {
	return e.value
}

// SetValue replaces the entry's value. When the entry belongs
// to a table, this is equivalent to [Table.Update] and does not
// invalidate iterators.
func (e *Entry[K, V]) SetValue(v V) {
	e.value = v
}

// Equal reports whether e and e1 have equal keys and deeply
// equal values.
func (e *Entry[K, V]) Equal(e1 *Entry[K, V]) bool {
	if e == e1 {
		return true
	}
	if e == nil || e1 == nil {
		return false
	}
	return e.key == e1.key && valuesEqual(e.value, e1.value)
}

// HashCode returns a hash code for the entry derived from both
// its key and its value. Equal entries have equal hash codes.
func (e *Entry[K, V]) HashCode() uint32 {
	h := uint32(1)
	h = 31*h + hashKey(e.key)
	h = 31*h + hashValue(e.value)
	return h
}

func (e *Entry[K, V]) String() string {
	return fmt.Sprintf("[KEY = %v, VALUE = %v]", e.key, e.value)
}

// exportAll lets cmp descend into unexported struct fields so that
// value equality is a full structural comparison.
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

func valuesEqual[V any](v0, v1 V) bool {
	return cmp.Equal(v0, v1, exportAll)
}
