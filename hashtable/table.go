// Package hashtable implements a hash table that maps keys to
// values using an array of buckets with separate chaining.
//
// Each bucket holds, in insertion order, the entries whose keys
// hash to its index. The table starts with [DefaultCapacity]
// buckets and doubles the number of buckets, rehashing every
// entry, as soon as the number of entries reaches [LoadFactor]
// times the number of buckets.
//
// Iteration is fail-fast: an [Iterator] reports
// [ErrConcurrentModification] if the table has been structurally
// modified (an entry added or removed, or the table resized)
// since the iterator was created. Replacing the value of an
// existing entry is not a structural modification.
//
// A Table is not safe for concurrent use.
package hashtable

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

const (
	// DefaultCapacity holds the number of buckets in a new table.
	DefaultCapacity = 16

	// LoadFactor holds the ratio of entries to buckets
	// at which the table grows.
	LoadFactor = 0.75
)

// Table is a mapping from keys K to values V.
//
// Key hash codes are derived from the key's dynamic type: keys
// implementing [HashCoder] supply their own, strings, integers,
// booleans and floats are hashed deterministically, and any
// other comparable key is hashed with [hash/maphash].
//
// The zero value is an empty table ready to use. Just as with
// map[K]V, a nil *Table is a valid empty table for all
// operations except [Table.Add].
type Table[K comparable, V any] struct {
	// buckets holds the entry chains. Its length is the table's
	// capacity, or zero before the first entry is added.
	buckets [][]*Entry[K, V]

	// size holds the total number of entries in buckets.
	size int

	// modCount is incremented on every structural modification.
	modCount int
}

// New returns a new empty table with [DefaultCapacity] buckets.
func New[K comparable, V any]() *Table[K, V] {
	t := &Table[K, V]{}
	t.init()
	return t
}

func (t *Table[K, V]) init() {
	if t.buckets == nil {
		t.buckets = make([][]*Entry[K, V], DefaultCapacity)
	}
}

// Len returns the number of entries in the table.
func (t *Table[K, V]) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Capacity returns the number of buckets in the table.
func (t *Table[K, V]) Capacity() int {
	if t == nil || t.buckets == nil {
		return DefaultCapacity
	}
	return len(t.buckets)
}

// find returns the bucket index for k and the position of k
// within that bucket, or -1 if k is not present.
func (t *Table[K, V]) find(k K) (int, int) {
	if t == nil || len(t.buckets) == 0 {
		return -1, -1
	}
	i := bucketIndex(hashKey(k), len(t.buckets))
	for j, e := range t.buckets[i] {
		if e.key == k {
			return i, j
		}
	}
	return i, -1
}

// Add associates v with k if k is not already present and reports
// whether it did so. An existing entry for k is left unchanged.
// Nil keys (nil pointers, interfaces and channels) are never
// added.
func (t *Table[K, V]) Add(k K, v V) bool {
	if t == nil {
		panic("(*Table).Add called on nil *Table")
	}
	if isNilKey(k) {
		return false
	}
	t.init()
	i, j := t.find(k)
	if j >= 0 {
		return false
	}
	t.buckets[i] = append(t.buckets[i], NewEntry(k, v))
	t.size++
	t.modCount++
	if float64(t.size) >= float64(len(t.buckets))*LoadFactor {
		t.resize()
	}
	return true
}

// Update replaces the value associated with k and reports whether
// k was present. It does not invalidate iterators.
func (t *Table[K, V]) Update(k K, v V) bool {
	i, j := t.find(k)
	if j < 0 {
		return false
	}
	t.buckets[i][j].value = v
	return true
}

// Remove removes the entry for k, returning its value
// and whether it was found.
func (t *Table[K, V]) Remove(k K) (V, bool) {
	i, j := t.find(k)
	if j < 0 {
		return *new(V), false
	}
	v := t.buckets[i][j].value
	t.buckets[i] = slices.Delete(t.buckets[i], j, j+1)
	t.size--
	t.modCount++
	return v, true
}

// Get returns the value associated with k and whether
// it was found.
func (t *Table[K, V]) Get(k K) (V, bool) {
	i, j := t.find(k)
	if j < 0 {
		return *new(V), false
	}
	return t.buckets[i][j].value, true
}

// Contains reports whether the table holds an entry for k.
// Unlike a comparison of the result of Get against the zero
// value, it reports true for keys associated with a zero value.
func (t *Table[K, V]) Contains(k K) bool {
	_, ok := t.Get(k)
	return ok
}

// resize doubles the number of buckets and moves every entry
// to its bucket in the new array. Entries that share a new bucket
// keep the relative order in which they are found in the old one.
func (t *Table[K, V]) resize() {
	buckets := make([][]*Entry[K, V], 2*len(t.buckets))
	for _, b := range t.buckets {
		for _, e := range b {
			i := bucketIndex(hashKey(e.key), len(buckets))
			buckets[i] = append(buckets[i], e)
		}
	}
	t.buckets = buckets
	t.modCount++
}

// Entries returns an iterator over the entries in the table,
// in bucket order. The entries are those held by the table:
// calling SetValue on one updates the table.
//
// It panics with [ErrConcurrentModification] if the table is
// structurally modified during iteration.
func (t *Table[K, V]) Entries() iter.Seq[*Entry[K, V]] {
	return func(yield func(*Entry[K, V]) bool) {
		it := t.Iterator()
		for {
			ok, err := it.HasNext()
			if err != nil {
				panic(err)
			}
			if !ok {
				return
			}
			e, err := it.Next()
			if err != nil {
				panic(err)
			}
			if !yield(e) {
				return
			}
		}
	}
}

// All returns an iterator over all the key/value pairs in the
// table. See [Table.Entries] for the iteration order and behavior
// under modification.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for e := range t.Entries() {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Keys returns an iterator over all the keys in the table.
func (t *Table[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for e := range t.Entries() {
			if !yield(e.key) {
				return
			}
		}
	}
}

// Values returns an iterator over all the values in the table.
func (t *Table[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for e := range t.Entries() {
			if !yield(e.value) {
				return
			}
		}
	}
}

// Equal reports whether t and t1 hold the same keys, each
// associated with deeply equal values. The number of buckets
// and the order of entries are irrelevant.
func (t *Table[K, V]) Equal(t1 *Table[K, V]) bool {
	if t == t1 {
		return true
	}
	if t == nil || t1 == nil {
		return false
	}
	if t.size != t1.size {
		return false
	}
	for _, b := range t.buckets {
		for _, e := range b {
			v, ok := t1.Get(e.key)
			if !ok || !valuesEqual(e.value, v) {
				return false
			}
		}
	}
	return true
}

// HashCode returns the sum of the hash codes of all
// entries in the table. Equal tables have equal hash codes.
func (t *Table[K, V]) HashCode() uint32 {
	if t == nil {
		return 0
	}
	var h uint32
	for _, b := range t.buckets {
		for _, e := range b {
			h += e.HashCode()
		}
	}
	return h
}

// String returns a description of the table's buckets and
// their contents, intended for debugging only.
func (t *Table[K, V]) String() string {
	var sb strings.Builder
	sb.WriteString("HashTable\n")
	fmt.Fprintf(&sb, "size = %d\n", t.Len())
	fmt.Fprintf(&sb, "capacity = %d\n", t.Capacity())
	for i := range t.Capacity() {
		fmt.Fprintf(&sb, "%d -> ", i)
		var b []*Entry[K, V]
		if t != nil && i < len(t.buckets) {
			b = t.buckets[i]
		}
		if len(b) == 0 {
			sb.WriteString("empty")
		}
		for j, e := range b {
			if j > 0 {
				sb.WriteString(" - ")
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
