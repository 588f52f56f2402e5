// Package script runs sequences of hash table operations
// described in YAML against a [hashtable.Table].
//
// A script looks like this:
//
//	ops:
//	- op: add
//	  key: k1
//	  value: v1
//	- op: get
//	  key: k1
//	- op: iterate
//
// The available operations are add, update, remove, get, contains,
// iterate and dump. All but iterate and dump require a key.
package script

import (
	"errors"
	"fmt"
	"io"
	"strings"

	plog "github.com/phuslu/log"
	yaml "gopkg.in/yaml.v3"

	"github.com/rogpeppe/hashtable/hashtable"
)

// ErrInvalidOp is returned by [Parse] for operations
// with an unknown name or a missing key.
var ErrInvalidOp = errors.New("invalid operation")

// Operation names accepted in the op field of a script.
const (
	OpAdd      = "add"
	OpUpdate   = "update"
	OpRemove   = "remove"
	OpGet      = "get"
	OpContains = "contains"
	OpIterate  = "iterate"
	OpDump     = "dump"
)

// Script holds a parsed script.
type Script struct {
	Ops []Op `yaml:"ops"`
}

// Op holds a single operation. Key is nil when the
// operation has no key.
type Op struct {
	Op    string  `yaml:"op"`
	Key   *string `yaml:"key"`
	Value string  `yaml:"value"`
}

func (op Op) validate() error {
	switch op.Op {
	case OpAdd, OpUpdate, OpRemove, OpGet, OpContains:
		if op.Key == nil {
			return fmt.Errorf("%w: %s requires a key", ErrInvalidOp, op.Op)
		}
	case OpIterate, OpDump:
		if op.Key != nil {
			return fmt.Errorf("%w: %s does not take a key", ErrInvalidOp, op.Op)
		}
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidOp, op.Op)
	}
	return nil
}

func (op Op) key() string {
	if op.Key == nil {
		return ""
	}
	return *op.Key
}

// Parse reads a script from r. Unknown fields are rejected.
// An empty document yields an empty script.
func Parse(r io.Reader) (*Script, error) {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	var s Script
	if err := d.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("decoding script: %w", err)
	}
	for i, op := range s.Ops {
		if err := op.validate(); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
	}
	return &s, nil
}

// Result holds the outcome of one operation.
type Result struct {
	Index int
	Op    string
	Key   string

	// Value holds the value returned by get and remove.
	Value string

	// OK holds the boolean result of the operation. For get
	// and remove it reports whether the key was found.
	OK bool

	// Output holds the text produced by iterate and dump.
	Output string
}

func (r Result) String() string {
	switch r.Op {
	case OpIterate, OpDump:
		return fmt.Sprintf("%s:\n%s", r.Op, r.Output)
	case OpGet, OpRemove:
		if !r.OK {
			return fmt.Sprintf("%s %s: absent", r.Op, r.Key)
		}
		return fmt.Sprintf("%s %s: %s", r.Op, r.Key, r.Value)
	}
	return fmt.Sprintf("%s %s: %t", r.Op, r.Key, r.OK)
}

// Run applies the operations in s to t in order, logging each one
// at debug level. It returns the results of the operations applied
// so far along with any error.
func Run(s *Script, t *hashtable.Table[string, string], log plog.Logger) ([]Result, error) {
	results := make([]Result, 0, len(s.Ops))
	for i, op := range s.Ops {
		r, err := apply(i, op, t)
		if err != nil {
			log.Error().Int("index", i).Str("op", op.Op).Err(err).Msg("operation failed")
			return results, fmt.Errorf("op %d: %w", i, err)
		}
		log.Debug().
			Int("index", i).
			Str("op", op.Op).
			Str("key", r.Key).
			Bool("ok", r.OK).
			Int("size", t.Len()).
			Int("capacity", t.Capacity()).
			Msg("applied")
		results = append(results, r)
	}
	return results, nil
}

func apply(i int, op Op, t *hashtable.Table[string, string]) (Result, error) {
	if err := op.validate(); err != nil {
		return Result{}, err
	}
	r := Result{
		Index: i,
		Op:    op.Op,
		Key:   op.key(),
	}
	switch op.Op {
	case OpAdd:
		r.OK = t.Add(r.Key, op.Value)
	case OpUpdate:
		r.OK = t.Update(r.Key, op.Value)
	case OpRemove:
		r.Value, r.OK = t.Remove(r.Key)
	case OpGet:
		r.Value, r.OK = t.Get(r.Key)
	case OpContains:
		r.OK = t.Contains(r.Key)
	case OpIterate:
		out, err := iterate(t)
		if err != nil {
			return Result{}, fmt.Errorf("iterating: %w", err)
		}
		r.Output, r.OK = out, true
	case OpDump:
		r.Output, r.OK = t.String(), true
	}
	return r, nil
}

// iterate renders the entries of t, one k=v pair per line,
// in iteration order.
func iterate(t *hashtable.Table[string, string]) (string, error) {
	var sb strings.Builder
	it := t.Iterator()
	for {
		ok, err := it.HasNext()
		if err != nil {
			return "", err
		}
		if !ok {
			return sb.String(), nil
		}
		e, err := it.Next()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "%s=%s\n", e.Key(), e.Value())
	}
}
