// Package binfield implements the schema engine's tree of typed field
// objects: the Field contract shared by every node, the Primitive and
// Composite kinds, and the parameter-sanitization rules that turn a
// prototype tree into one safe to instantiate repeatedly.
//
// A Field is not safe for concurrent use; a live tree has exactly one
// owner at a time, matching the single-threaded, synchronous model of the
// engine as a whole.
package binfield

import (
	"bytes"
	"encoding/json"

	"github.com/binstruct/binstruct/bitio"
	"github.com/binstruct/binstruct/evalctx"
)

// Field is the contract shared by every schema node, primitive or
// composite: it can be read from and written to a bit stream, report its
// size, be cleared to its default, and be snapshotted and restored.
//
// Field embeds evalctx.Node so that any field can serve as the starting
// point, or an ancestor, of a LazyEvaluator resolution.
type Field interface {
	evalctx.Node

	// Read parses this field's value from s, in the same order it would be
	// written in.
	Read(s *bitio.Stream) error

	// Write serializes this field's current value to s.
	Write(s *bitio.Stream) error

	// NumBits reports the field's current size in bits. Byte-aligned
	// fields always return a multiple of 8.
	NumBits() uint64

	// Clear resets the field to its prototype's default value.
	Clear()

	// IsClear reports whether the field's value currently equals its
	// default.
	IsClear() bool

	// Snapshot returns a plain value tree mirroring this field's current
	// state: a scalar for a primitive, a Snapshot for a Record/Struct, []any
	// for an Array, and the selected alternative's snapshot for a Choice.
	Snapshot() any

	// Assign restores state from a snapshot, a Record/Struct-compatible
	// mapping, or another compatible value. It returns
	// binerr.InvalidAssignmentError if the field's value is computed or the
	// shape is incompatible.
	Assign(v any) error

	// setParent installs the back-reference to the owning composite. It is
	// unexported: parent links are never set from outside this package,
	// and never by anything other than the owning composite's own
	// instantiate/append/insert path.
	setParent(Field)
}

// NumBytes rounds f's current bit size up to the nearest whole byte, the
// num_bytes reported to callers per spec.
func NumBytes(f Field) int64 {
	bits := f.NumBits()
	return int64((bits + 7) / 8)
}

// Snapshot is the ordered view of a Record/Struct's current values returned
// by Record.Snapshot: a map[string]any loses declaration order, which
// matters for callers re-serializing a snapshot as, say, a table row or a
// YAML document.
type Snapshot struct {
	Names  []string
	Values map[string]any
}

// Map returns the plain, unordered view of the snapshot.
func (s Snapshot) Map() map[string]any { return s.Values }

// MarshalJSON renders the snapshot as a JSON object in declaration order,
// instead of the randomized key order encoding/json would otherwise produce
// from the underlying map.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.Names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(s.Values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Composite is a Field that owns an ordered sequence of children.
type Composite interface {
	Field
	Children() []Field
}

// Prototype is an immutable schema node, sanitized once, that manufactures
// live Field instances. Prototypes may be shared across many Instantiate
// calls; the instances they produce may not be shared.
type Prototype interface {
	// Sanitize validates and normalizes the prototype (resolving nested
	// prototypes, checking for name collisions, etc). It is idempotent and
	// is called automatically by Instantiate if not already sanitized.
	Sanitize() error

	// Instantiate manufactures a live Field from this prototype, owned by
	// parent (nil at the root), optionally pre-populated with initial.
	Instantiate(initial any, parent Field) (Field, error)
}

// base is embedded by every concrete field implementation. It carries the
// back-reference to the parent and the field's own declared parameters,
// satisfying the evalctx.Node half of the Field contract uniformly.
type base struct {
	parent Field
	params map[string]evalctx.Expr
	name   string // for DebugName/error messages only
}

func newBase(name string, params map[string]evalctx.Expr) base {
	if params == nil {
		params = map[string]evalctx.Expr{}
	}
	return base{params: params, name: name}
}

func (b *base) Param(name string) (evalctx.Expr, bool) {
	e, ok := b.params[name]
	return e, ok
}

func (b *base) ParentNode() evalctx.Node {
	if b.parent == nil {
		return nullFieldNode
	}
	return b.parent
}

func (b *base) Parent() Field { return b.parent }

func (b *base) setParent(f Field) { b.parent = f }

func (b *base) DebugName() string { return b.name }

// baseMethod provides the one accessor every field shares: "parent" always
// resolves to the enclosing field, or the null placeholder at the root.
// Concrete types embed this and override Method to add their own
// accessors, falling back to baseMethod for unrecognized names.
func (b *base) baseMethod(name string) (any, bool, error) {
	if name == "parent" {
		if b.parent == nil {
			return Field(nullFieldNode), true, nil
		}
		return b.parent, true, nil
	}
	return nil, false, nil
}

// nullField is the placeholder returned by the root field's parent accessor
// and by ParentNode at the root of the ancestor chain.
type nullField struct{ base }

func (n *nullField) Read(*bitio.Stream) error  { return nil }
func (n *nullField) Write(*bitio.Stream) error { return nil }
func (n *nullField) NumBits() uint64           { return 0 }
func (n *nullField) Clear()                    {}
func (n *nullField) IsClear() bool             { return true }
func (n *nullField) Snapshot() any             { return nil }
func (n *nullField) Assign(any) error          { return nil }
func (n *nullField) Method(name string) (any, bool, error) {
	return n.baseMethod(name)
}

// ParentNode terminates ancestor-chain walks at the null placeholder rather
// than looping back to itself.
func (n *nullField) ParentNode() evalctx.Node { return nil }

var nullFieldNode Field = &nullField{base: newBase("<root>", nil)}
