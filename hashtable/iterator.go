package hashtable

import "errors"

var (
	// ErrConcurrentModification is returned by [Iterator] methods
	// when the table has been structurally modified since the
	// iterator was created. The iterator cannot be used further.
	ErrConcurrentModification = errors.New("hashtable: table modified during iteration")

	// ErrNoSuchEntry is returned by [Iterator.Next] when there
	// are no more entries.
	ErrNoSuchEntry = errors.New("hashtable: no more entries")
)

// Iterator walks the entries of a table in bucket order,
// and within a bucket in insertion order.
//
// The order is deterministic for a given sequence of operations
// but changes whenever the table is resized, so it should
// not be relied upon.
type Iterator[K comparable, V any] struct {
	t *Table[K, V]

	// bucket and pos hold the position of the next
	// entry to return.
	bucket, pos int

	// modCount holds the table's modCount at the time
	// the iterator was created.
	modCount int
}

// Iterator returns an iterator positioned before the first entry
// in the table.
func (t *Table[K, V]) Iterator() *Iterator[K, V] {
	it := &Iterator[K, V]{t: t}
	if t != nil {
		it.modCount = t.modCount
	}
	return it
}

// HasNext reports whether a call to Next would return an entry.
func (it *Iterator[K, V]) HasNext() (bool, error) {
	if err := it.check(); err != nil {
		return false, err
	}
	return it.seek(), nil
}

// Next returns the next entry. It returns [ErrNoSuchEntry] when
// the iterator is exhausted.
func (it *Iterator[K, V]) Next() (*Entry[K, V], error) {
	if err := it.check(); err != nil {
		return nil, err
	}
	if !it.seek() {
		return nil, ErrNoSuchEntry
	}
	e := it.t.buckets[it.bucket][it.pos]
	it.pos++
	return e, nil
}

func (it *Iterator[K, V]) check() error {
	if it.t != nil && it.t.modCount != it.modCount {
		return ErrConcurrentModification
	}
	return nil
}

// seek skips exhausted and empty buckets and reports whether
// an entry remains at the current position.
func (it *Iterator[K, V]) seek() bool {
	if it.t == nil {
		return false
	}
	for it.bucket < len(it.t.buckets) {
		if it.pos < len(it.t.buckets[it.bucket]) {
			return true
		}
		it.bucket++
		it.pos = 0
	}
	return false
}
