package hashtable

import (
	"hash/maphash"
	"math"
	"reflect"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/zeebo/xxh3"
	"golang.org/x/exp/constraints"
)

// HashCoder is implemented by keys and values that provide
// their own 32-bit hash code. The hash code must be consistent
// with equality: keys that compare equal with == (and values
// that are deeply equal) must return the same hash code.
type HashCoder interface {
	HashCode() uint32
}

// seed is used for keys that have no deterministic hash code of
// their own. It is fixed for the lifetime of the process.
var seed = maphash.MakeSeed()

// bucketIndex returns the index of the bucket holding a key
// with hash code h in a table with the given number of buckets.
// The high half of the hash is folded into the low half
// before the sign bit is masked off so that keys differing
// only in their high bits don't all land in the same bucket.
func bucketIndex(h uint32, capacity int) int {
	h ^= h >> 16
	return int(h&0x7fffffff) % capacity
}

func hashKey[K comparable](k K) uint32 {
	if h, ok := hashScalar(any(k)); ok {
		return h
	}
	return fold(maphash.Comparable(seed, k))
}

// hashValue returns the hash code of an arbitrary value.
// Deeply equal values produce the same hash code.
func hashValue(v any) uint32 {
	if v == nil {
		return 0
	}
	if h, ok := hashScalar(v); ok {
		return h
	}
	if opaque(reflect.TypeOf(v), make(map[reflect.Type]bool)) {
		// hashstructure would read fields that equality ignores,
		// or recurse forever on a cyclic value.
		return 0
	}
	h, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
	if err != nil {
		// Unhashable values (funcs, channels) all share a hash code,
		// which is still consistent with equality.
		return 0
	}
	return fold(h)
}

// hashScalar returns a deterministic hash code for v if it
// implements HashCoder or has a scalar underlying type.
func hashScalar(v any) (uint32, bool) {
	switch v := v.(type) {
	case HashCoder:
		return v.HashCode(), true
	case string:
		return hashString(v), true
	case int:
		return hashInt(v), true
	case int32:
		return hashInt(v), true
	case int64:
		return hashInt(v), true
	case uint:
		return hashInt(v), true
	case uint32:
		return hashInt(v), true
	case uint64:
		return hashInt(v), true
	case bool:
		return hashBool(v), true
	case []byte:
		return fold(xxh3.Hash(v)), true
	case time.Time:
		return 31*hashInt(v.Unix()) + hashInt(v.Nanosecond()), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return hashString(rv.String()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return hashInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return hashInt(rv.Uint()), true
	case reflect.Bool:
		return hashBool(rv.Bool()), true
	case reflect.Float32, reflect.Float64:
		return hashFloat(rv.Float()), true
	case reflect.Complex64, reflect.Complex128:
		c := rv.Complex()
		return 31*hashFloat(real(c)) + hashFloat(imag(c)), true
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return fold(xxh3.Hash(rv.Bytes())), true
		}
	}
	return 0, false
}

// hashInt returns the hash code of an integer. Non-negative
// values that fit in 32 bits hash to themselves.
func hashInt[T constraints.Integer](x T) uint32 {
	return fold(uint64(x))
}

func hashString(s string) uint32 {
	return fold(xxh3.HashString(s))
}

func hashBool(b bool) uint32 {
	if b {
		return 1231
	}
	return 1237
}

func hashFloat(f float64) uint32 {
	if f == 0 {
		// -0 == +0
		f = 0
	}
	return fold(math.Float64bits(f))
}

// opaque reports whether values of type t can compare equal under
// cmp.Equal while differing in the exported fields hashstructure
// reads. That is the case when t, or a type reachable from it, has
// an Equal method or is an interface, and when t is recursive, since
// a value of a recursive type may be cyclic.
func opaque(t reflect.Type, visiting map[reflect.Type]bool) bool {
	if visiting[t] {
		return true
	}
	if t.Kind() == reflect.Interface || hasEqualMethod(t) {
		return true
	}
	visiting[t] = true
	defer delete(visiting, t)
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return opaque(t.Elem(), visiting)
	case reflect.Map:
		return opaque(t.Key(), visiting) || opaque(t.Elem(), visiting)
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if f.IsExported() && opaque(f.Type, visiting) {
				return true
			}
		}
	}
	return false
}

// hasEqualMethod reports whether t or *t has a method
// Equal(U) bool that accepts a value of its own receiver type,
// which cmp.Equal uses in place of a structural comparison.
func hasEqualMethod(t reflect.Type) bool {
	for _, rt := range []reflect.Type{t, reflect.PointerTo(t)} {
		m, ok := rt.MethodByName("Equal")
		if !ok {
			continue
		}
		mt := m.Type
		if mt.NumIn() == 2 && mt.NumOut() == 1 &&
			mt.Out(0).Kind() == reflect.Bool && rt.AssignableTo(mt.In(1)) {
			return true
		}
	}
	return false
}

func fold(h uint64) uint32 {
	return uint32(h ^ h>>32)
}

// isNilKey reports whether k is a nil interface, pointer or channel.
// Such keys are never stored.
func isNilKey(k any) bool {
	if k == nil {
		return true
	}
	switch rv := reflect.ValueOf(k); rv.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
