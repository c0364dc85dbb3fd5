package binfield

import (
	"errors"
	"fmt"

	"github.com/binstruct/binstruct/binerr"
	"github.com/binstruct/binstruct/bitio"
	"github.com/binstruct/binstruct/evalctx"
)

// ArrayProto describes a homogeneous sequence of Element instances, whose
// length is fixed (InitialLength), data-driven (ReadUntil), or open-ended
// (ReadUntilEOF). Exactly one of these three disciplines applies; specifying
// more than one is a sanitize-time error.
type ArrayProto struct {
	Name          string
	Element       Prototype
	InitialLength evalctx.Expr
	ReadUntil     evalctx.Expr // closure evaluated after each element is appended
	ReadUntilEOF  bool

	sanitized bool
}

func (p *ArrayProto) Sanitize() error {
	disciplines := 0
	if p.InitialLength != nil {
		disciplines++
	}
	if p.ReadUntil != nil {
		disciplines++
	}
	if p.ReadUntilEOF {
		disciplines++
	}
	if disciplines > 1 {
		return &binerr.MutuallyExclusiveError{Container: "array", A: "initial_length", B: "read_until"}
	}
	if p.Element == nil {
		return fmt.Errorf("binstruct: array %q: element prototype is required", p.Name)
	}
	if p.InitialLength == nil && p.ReadUntil == nil && !p.ReadUntilEOF {
		p.InitialLength = evalctx.Const{Value: 0}
	}
	if err := p.Element.Sanitize(); err != nil {
		return err
	}
	p.sanitized = true
	return nil
}

func (p *ArrayProto) Instantiate(initial any, parent Field) (Field, error) {
	if !p.sanitized {
		if err := p.Sanitize(); err != nil {
			return nil, err
		}
	}
	a := &Array{proto: p}
	a.base = newBase(p.Name, map[string]evalctx.Expr{})
	if p.InitialLength != nil {
		a.params["initial_length"] = p.InitialLength
	}
	a.setParent(parent)
	if initial != nil {
		if err := a.Assign(initial); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Array is a live instance of ArrayProto.
type Array struct {
	base
	proto    *ArrayProto
	elements []Field
}

func (a *Array) Children() []Field { return a.elements }

func (a *Array) Method(name string) (any, bool, error) {
	if v, ok, err := a.baseMethod(name); ok || err != nil {
		return v, ok, err
	}
	if name == "length" {
		return len(a.elements), true, nil
	}
	return nil, false, nil
}

func (a *Array) NumBits() uint64 {
	var total uint64
	for _, e := range a.elements {
		total += e.NumBits()
	}
	// Read and Write realign to a byte boundary at the end of the array.
	return (total + 7) / 8 * 8
}

func (a *Array) Clear() { a.elements = nil }

func (a *Array) IsClear() bool { return len(a.elements) == 0 }

func (a *Array) Snapshot() any {
	out := make([]any, len(a.elements))
	for i, e := range a.elements {
		out[i] = e.Snapshot()
	}
	return out
}

func (a *Array) Assign(v any) error {
	vs, ok := v.([]any)
	if !ok {
		return &binerr.InvalidAssignmentError{Field: a.proto.Name, Reason: "cannot assign non-slice to array"}
	}
	a.elements = nil
	for _, item := range vs {
		if err := a.Push(item); err != nil {
			return err
		}
	}
	return nil
}

// Length reports the number of elements currently present.
func (a *Array) Length() int { return len(a.elements) }

// At returns the element at i without extending the array.
func (a *Array) At(i int) (Field, bool) {
	if i < 0 || i >= len(a.elements) {
		return nil, false
	}
	return a.elements[i], true
}

func (a *Array) newElement() (Field, error) {
	return a.proto.Element.Instantiate(nil, a)
}

func (a *Array) growTo(lastIndex int) error {
	for len(a.elements) <= lastIndex {
		elem, err := a.newElement()
		if err != nil {
			return err
		}
		a.elements = append(a.elements, elem)
	}
	return nil
}

// Index returns the element at i, auto-extending the array with default
// elements if i is beyond its current length.
func (a *Array) Index(i int) (Field, error) {
	if i < 0 {
		return nil, fmt.Errorf("binstruct: negative array index %d", i)
	}
	if err := a.growTo(i); err != nil {
		return nil, err
	}
	return a.elements[i], nil
}

// Push appends a new element, optionally assigning v to it.
func (a *Array) Push(v any) error {
	elem, err := a.newElement()
	if err != nil {
		return err
	}
	if v != nil {
		if err := elem.Assign(v); err != nil {
			return err
		}
	}
	a.elements = append(a.elements, elem)
	return nil
}

// Insert extends the array to i-1 with default elements if necessary, then
// splices len(vs) new elements at position i, shifting any existing tail.
func (a *Array) Insert(i int, vs []any) error {
	if i < 0 {
		return fmt.Errorf("binstruct: negative insert index %d", i)
	}
	if i > 0 {
		if err := a.growTo(i - 1); err != nil {
			return err
		}
	}
	if i > len(a.elements) {
		i = len(a.elements)
	}

	inserted := make([]Field, 0, len(vs))
	for _, v := range vs {
		elem, err := a.newElement()
		if err != nil {
			return err
		}
		if v != nil {
			if err := elem.Assign(v); err != nil {
				return err
			}
		}
		inserted = append(inserted, elem)
	}

	tail := append([]Field{}, a.elements[i:]...)
	a.elements = append(a.elements[:i:i], inserted...)
	a.elements = append(a.elements, tail...)
	return nil
}

func (a *Array) Read(s *bitio.Stream) error {
	a.elements = nil

	switch {
	case a.proto.ReadUntilEOF:
		for {
			elem, err := a.newElement()
			if err != nil {
				return err
			}
			if err := elem.Read(s); err != nil {
				if errors.Is(err, binerr.ErrShortRead) {
					break
				}
				return err
			}
			a.elements = append(a.elements, elem)
		}

	case a.proto.ReadUntil != nil:
		for {
			elem, err := a.newElement()
			if err != nil {
				return err
			}
			if err := elem.Read(s); err != nil {
				return err
			}
			a.elements = append(a.elements, elem)

			done, err := a.evalReadUntil(elem, len(a.elements)-1)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}

	default:
		n, err := a.evalInitialLength()
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			elem, err := a.newElement()
			if err != nil {
				return err
			}
			if err := elem.Read(s); err != nil {
				return err
			}
			a.elements = append(a.elements, elem)
		}
	}

	return s.ResumeByteAlignment()
}

func (a *Array) Write(s *bitio.Stream) error {
	for _, e := range a.elements {
		if err := e.Write(s); err != nil {
			return err
		}
	}
	return s.ResumeByteAlignment()
}

func (a *Array) evalInitialLength() (int, error) {
	v, err := evalctx.Eval(a.proto.InitialLength, a, nil)
	if err != nil {
		return 0, err
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, fmt.Errorf("binstruct: array %q: initial_length must be an integer, got %T", a.proto.Name, v)
	}
	return int(n), nil
}

func (a *Array) evalReadUntil(elem Field, index int) (bool, error) {
	overrides := map[string]any{
		"index":   index,
		"element": elem,
		"array":   Field(a),
	}
	v, err := evalctx.Eval(a.proto.ReadUntil, elem, overrides)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("binstruct: array %q: read_until must evaluate to a bool, got %T", a.proto.Name, v)
	}
	return b, nil
}
