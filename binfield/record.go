package binfield

import (
	"fmt"

	"github.com/binstruct/binstruct/binerr"
	"github.com/binstruct/binstruct/bitio"
	"github.com/binstruct/binstruct/evalctx"
)

// NamedFieldProto pairs a child prototype with the name it is addressed by
// within its enclosing Record or Struct. Name is empty for an anonymous
// Struct field, whose own children are promoted into the parent's namespace.
type NamedFieldProto struct {
	Name  string
	Proto Prototype
}

// reservedRecordNames shadow a Record/Struct's own built-in accessors and
// cannot be used as child field names.
var reservedRecordNames = map[string]bool{
	"parent":   true,
	"index":    true,
	"element":  true,
	"array":    true,
	"snapshot": true,
	"assign":   true,
}

// RecordProto describes an ordered, named sequence of children read and
// written in declaration order. Setting AllowAnonymous permits fields with an
// empty Name — the Struct flavor described in the schema's type surface —
// whose children are promoted into the enclosing Record's own namespace
// rather than addressed through an intermediate name.
type RecordProto struct {
	Name           string
	Fields         []NamedFieldProto
	Hide           map[string]bool
	Endian         evalctx.Expr // informational only; composition happens at schema-build time
	AllowAnonymous bool

	sanitized bool
}

func (p *RecordProto) Sanitize() error {
	seen := map[string]bool{}
	for i := range p.Fields {
		nf := &p.Fields[i]
		if nf.Name == "" {
			if !p.AllowAnonymous {
				return &binerr.NameCollisionError{Container: "record", Name: "", Reason: "anonymous fields are not permitted here"}
			}
		} else {
			if reservedRecordNames[nf.Name] {
				return &binerr.NameCollisionError{Container: "record", Name: nf.Name, Reason: "shadows a built-in accessor"}
			}
			if seen[nf.Name] {
				return &binerr.NameCollisionError{Container: "record", Name: nf.Name, Reason: "duplicate field name"}
			}
			seen[nf.Name] = true
		}
		if nf.Proto == nil {
			return fmt.Errorf("binstruct: record %q: field %d has no prototype", p.Name, i)
		}
		if err := nf.Proto.Sanitize(); err != nil {
			return err
		}
	}
	p.sanitized = true
	return nil
}

func (p *RecordProto) Instantiate(initial any, parent Field) (Field, error) {
	if !p.sanitized {
		if err := p.Sanitize(); err != nil {
			return nil, err
		}
	}

	r := &Record{proto: p}
	r.base = newBase(p.Name, map[string]evalctx.Expr{})
	if p.Endian != nil {
		r.params["endian"] = p.Endian
	}
	r.setParent(parent)

	r.children = make([]Field, len(p.Fields))
	r.index = map[string]int{}
	r.order = make([]string, len(p.Fields))
	for i, nf := range p.Fields {
		child, err := nf.Proto.Instantiate(nil, r)
		if err != nil {
			return nil, err
		}
		r.children[i] = child
		r.order[i] = nf.Name
		if nf.Name != "" {
			r.index[nf.Name] = i
		} else if promoted, ok := child.(Composite); ok {
			// Anonymous field: splice its own named children up into this
			// Record's namespace so they're addressable directly.
			for name := range promotedNames(promoted) {
				r.promoted = append(r.promoted, promotedChild{name: name, host: promoted})
			}
		}
	}

	if initial != nil {
		if err := r.Assign(initial); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// promotedNames returns the set of names a composite exposes through its own
// Method accessor, used to splice an anonymous Struct field's children into
// the enclosing namespace. Composite implementations expose this via their
// own Children()/namer, so this walks the record-like ones directly.
func promotedNames(c Composite) map[string]bool {
	names := map[string]bool{}
	if rec, ok := c.(*Record); ok {
		for name := range rec.index {
			names[name] = true
		}
	}
	return names
}

type promotedChild struct {
	name string
	host Composite
}

// Record is a live instance of RecordProto, and also backs the Struct schema
// type (RecordProto.AllowAnonymous set true).
type Record struct {
	base
	proto    *RecordProto
	children []Field
	index    map[string]int
	order    []string // declared field names, in declaration order, "" for anonymous
	promoted []promotedChild
}

func (r *Record) Children() []Field {
	if len(r.proto.Hide) == 0 {
		return r.children
	}
	out := make([]Field, 0, len(r.children))
	for i, c := range r.children {
		name := r.nameAt(i)
		if name != "" && r.proto.Hide[name] {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *Record) nameAt(i int) string { return r.order[i] }

func (r *Record) Method(name string) (any, bool, error) {
	if v, ok, err := r.baseMethod(name); ok || err != nil {
		return v, ok, err
	}
	if i, ok := r.index[name]; ok {
		return r.childValue(r.children[i]), true, nil
	}
	for _, p := range r.promoted {
		if p.name == name {
			if rec, ok := p.host.(*Record); ok {
				if i, ok := rec.index[name]; ok {
					return rec.childValue(rec.children[i]), true, nil
				}
			}
		}
	}
	return nil, false, nil
}

func (r *Record) childValue(child Field) any {
	if _, ok := child.(Composite); ok {
		return child
	}
	return child.Snapshot()
}

func isBitAligned(f Field) bool {
	if a, ok := f.(interface{ alwaysBitAligned() bool }); ok && a.alwaysBitAligned() {
		return true
	}
	return f.NumBits()%8 != 0
}

func (r *Record) NumBits() uint64 {
	var total uint64
	for _, c := range r.children {
		bits := c.NumBits()
		if !isBitAligned(c) && total%8 != 0 {
			total = (total + 7) / 8 * 8
		}
		total += bits
	}
	return (total + 7) / 8 * 8
}

func (r *Record) Clear() {
	for _, c := range r.children {
		c.Clear()
	}
}

func (r *Record) IsClear() bool {
	for _, c := range r.children {
		if !c.IsClear() {
			return false
		}
	}
	return true
}

func (r *Record) Snapshot() any {
	names := make([]string, 0, len(r.order))
	values := make(map[string]any, len(r.order))
	for i, name := range r.order {
		if name == "" || r.proto.Hide[name] {
			continue
		}
		names = append(names, name)
		values[name] = r.children[i].Snapshot()
	}
	return Snapshot{Names: names, Values: values}
}

func (r *Record) Assign(v any) error {
	var m map[string]any
	switch vv := v.(type) {
	case map[string]any:
		m = vv
	case Snapshot:
		m = vv.Values
	default:
		return &binerr.InvalidAssignmentError{Field: r.proto.Name, Reason: "cannot assign non-map to record"}
	}
	for name, val := range m {
		i, ok := r.index[name]
		if !ok {
			return &binerr.InvalidAssignmentError{Field: r.proto.Name, Reason: fmt.Sprintf("no such field %q", name)}
		}
		if err := r.children[i].Assign(val); err != nil {
			return err
		}
	}
	return nil
}

func (r *Record) Read(s *bitio.Stream) error {
	for _, c := range r.children {
		if !isBitAligned(c) {
			if err := s.ResumeByteAlignment(); err != nil {
				return err
			}
		}
		if err := c.Read(s); err != nil {
			return err
		}
	}
	return s.ResumeByteAlignment()
}

func (r *Record) Write(s *bitio.Stream) error {
	for _, c := range r.children {
		if !isBitAligned(c) {
			if err := s.ResumeByteAlignment(); err != nil {
				return err
			}
		}
		if err := c.Write(s); err != nil {
			return err
		}
	}
	return s.ResumeByteAlignment()
}
