package hashtable

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-quicktest/qt"
)

type fixedHash uint32

func (h fixedHash) HashCode() uint32 { return uint32(h) }

type userID string

type point struct {
	X, Y int
}

// name compares case-insensitively.
type name struct {
	S string
}

func (n name) Equal(n1 name) bool {
	return strings.EqualFold(n.S, n1.S)
}

type event struct {
	Name string
	At   time.Time
}

type node struct {
	V    int
	Next *node
}

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		testName string
		h        uint32
		capacity int
		want     int
	}{{
		testName: "small",
		h:        5,
		capacity: 16,
		want:     5,
	}, {
		testName: "wraps",
		h:        21,
		capacity: 16,
		want:     5,
	}, {
		testName: "high bits folded",
		h:        0x10000,
		capacity: 16,
		want:     1,
	}, {
		testName: "sign bit masked",
		h:        0x80000000,
		capacity: 16,
		want:     0,
	}, {
		testName: "all bits",
		h:        math.MaxUint32,
		capacity: 32,
		want:     0,
	}}
	for _, test := range tests {
		t.Run(test.testName, func(t *testing.T) {
			qt.Assert(t, qt.Equals(bucketIndex(test.h, test.capacity), test.want))
		})
	}
}

func TestHashKey(t *testing.T) {
	qt.Assert(t, qt.Equals(hashKey(0), 0))
	qt.Assert(t, qt.Equals(hashKey(20), 20))
	qt.Assert(t, qt.Equals(hashKey(int64(20)), 20))
	qt.Assert(t, qt.Equals(hashKey(uint8(20)), 20))
	qt.Assert(t, qt.Equals(hashKey(fixedHash(99)), 99))
	qt.Assert(t, qt.Equals(hashKey(true), 1231))
	qt.Assert(t, qt.Equals(hashKey(false), 1237))

	// Named scalar types hash like their underlying type.
	qt.Assert(t, qt.Equals(hashKey(userID("alice")), hashKey("alice")))

	// +0 and -0 compare equal so they must hash equally.
	qt.Assert(t, qt.Equals(hashKey(math.Copysign(0, -1)), hashKey(0.0)))

	qt.Assert(t, qt.Equals(hashKey(point{1, 2}), hashKey(point{1, 2})))
	qt.Assert(t, qt.Equals(hashKey[any]("x"), hashKey("x")))
}

func TestHashValue(t *testing.T) {
	qt.Assert(t, qt.Equals(hashValue(nil), 0))
	qt.Assert(t, qt.Equals(hashValue(7), 7))
	qt.Assert(t, qt.Equals(hashValue([]byte("abc")), hashValue([]byte("abc"))))
	qt.Assert(t, qt.Equals(hashValue(&point{1, 2}), hashValue(&point{1, 2})))
	qt.Assert(t, qt.Equals(hashValue(map[string]int{"a": 1, "b": 2}), hashValue(map[string]int{"b": 2, "a": 1})))
}

func TestHashValueConsistentWithEqual(t *testing.T) {
	now := time.Now()
	utc := now.UTC()
	zoned := now.In(time.FixedZone("X", 3600))

	cyclic0 := &node{V: 1}
	cyclic0.Next = cyclic0
	cyclic1 := &node{V: 1}
	cyclic1.Next = cyclic1

	tests := []struct {
		testName string
		v0, v1   any
	}{{
		testName: "time",
		v0:       utc,
		v1:       zoned,
	}, {
		testName: "time-pointer",
		v0:       &utc,
		v1:       &zoned,
	}, {
		testName: "equal-method",
		v0:       name{"Alice"},
		v1:       name{"ALICE"},
	}, {
		testName: "nested-time",
		v0:       event{"x", utc},
		v1:       event{"x", zoned},
	}, {
		testName: "slice-of-equal-method",
		v0:       []name{{"a"}, {"b"}},
		v1:       []name{{"A"}, {"B"}},
	}, {
		testName: "cyclic",
		v0:       cyclic0,
		v1:       cyclic1,
	}}
	for _, test := range tests {
		t.Run(test.testName, func(t *testing.T) {
			qt.Assert(t, qt.IsTrue(valuesEqual(test.v0, test.v1)))
			qt.Assert(t, qt.Equals(hashValue(test.v0), hashValue(test.v1)))
		})
	}
}

func TestHashTime(t *testing.T) {
	now := time.Now()
	qt.Assert(t, qt.Equals(hashKey(now.UTC()), hashKey(now.In(time.FixedZone("X", -7200)))))
	qt.Assert(t, qt.Not(qt.Equals(hashKey(now), hashKey(now.Add(time.Nanosecond)))))
}

func TestOpaque(t *testing.T) {
	tests := []struct {
		testName string
		t        reflect.Type
		want     bool
	}{{
		testName: "struct",
		t:        reflect.TypeFor[point](),
		want:     false,
	}, {
		testName: "map",
		t:        reflect.TypeFor[map[string][]point](),
		want:     false,
	}, {
		testName: "equal-method",
		t:        reflect.TypeFor[name](),
		want:     true,
	}, {
		testName: "time-field",
		t:        reflect.TypeFor[event](),
		want:     true,
	}, {
		testName: "interface-element",
		t:        reflect.TypeFor[[]any](),
		want:     true,
	}, {
		testName: "recursive",
		t:        reflect.TypeFor[*node](),
		want:     true,
	}, {
		testName: "shared-non-recursive",
		t:        reflect.TypeFor[struct{ A, B *point }](),
		want:     false,
	}}
	for _, test := range tests {
		t.Run(test.testName, func(t *testing.T) {
			qt.Assert(t, qt.Equals(opaque(test.t, make(map[reflect.Type]bool)), test.want))
		})
	}
}

func TestIsNilKey(t *testing.T) {
	var p *int
	var ch chan int
	qt.Assert(t, qt.IsTrue(isNilKey(nil)))
	qt.Assert(t, qt.IsTrue(isNilKey(p)))
	qt.Assert(t, qt.IsTrue(isNilKey(ch)))
	qt.Assert(t, qt.IsFalse(isNilKey(0)))
	qt.Assert(t, qt.IsFalse(isNilKey("")))
	qt.Assert(t, qt.IsFalse(isNilKey(new(int))))
}

// checkInvariants checks that the size of tab matches its
// bucket contents, that keys are unique and that every entry
// is in the bucket its key hashes to.
func checkInvariants[K comparable, V any](t *testing.T, tab *Table[K, V]) {
	t.Helper()
	seen := make(map[K]bool)
	n := 0
	for i, b := range tab.buckets {
		for _, e := range b {
			qt.Assert(t, qt.Equals(bucketIndex(hashKey(e.key), len(tab.buckets)), i))
			qt.Assert(t, qt.IsFalse(seen[e.key]), qt.Commentf("duplicate key %v", e.key))
			seen[e.key] = true
			n++
		}
	}
	qt.Assert(t, qt.Equals(n, tab.size))
}

func TestInvariants(t *testing.T) {
	tab := New[string, int]()
	for i := range 500 {
		tab.Add(strconv.Itoa(i%300), i)
		if i%7 == 0 {
			tab.Remove(strconv.Itoa(i / 3))
		}
		checkInvariants(t, tab)
	}
}

func TestModCount(t *testing.T) {
	tab := New[int, string]()
	qt.Assert(t, qt.Equals(tab.modCount, 0))

	tab.Add(1, "one")
	qt.Assert(t, qt.Equals(tab.modCount, 1))

	tab.Add(1, "again")
	tab.Update(1, "ONE")
	tab.Remove(2)
	qt.Assert(t, qt.Equals(tab.modCount, 1))

	tab.Remove(1)
	qt.Assert(t, qt.Equals(tab.modCount, 2))

	// The 12th insertion also resizes the table.
	for i := range 12 {
		tab.Add(i, "x")
	}
	qt.Assert(t, qt.Equals(tab.modCount, 2+12+1))
	qt.Assert(t, qt.Equals(len(tab.buckets), 32))
}

func TestResizePreservesBucketOrder(t *testing.T) {
	tab := New[fixedHash, int]()
	// 16 and 48 share bucket 0 at capacity 16 and bucket 16 at capacity 32.
	tab.Add(48, 1)
	tab.Add(16, 2)
	tab.resize()
	qt.Assert(t, qt.Equals(len(tab.buckets), 32))
	qt.Assert(t, qt.HasLen(tab.buckets[16], 2))
	qt.Assert(t, qt.Equals(tab.buckets[16][0].key, 48))
	qt.Assert(t, qt.Equals(tab.buckets[16][1].key, 16))
	checkInvariants(t, tab)
}
