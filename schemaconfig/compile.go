package schemaconfig

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/binstruct/binstruct/binfield"
	"github.com/binstruct/binstruct/binfield/registry"
	"github.com/binstruct/binstruct/evalctx"
)

// CompileDocument parses and compiles a schema document in one step.
func CompileDocument(data []byte) (binfield.Prototype, error) {
	n, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Compile(n)
}

// Compile turns a parsed Node tree into a binfield.Prototype, resolving each
// node's type name through binfield/registry. Byte order for an
// endian-polymorphic primitive name with no explicit be/le suffix comes from
// the nearest enclosing Record/Struct/Array's Endian, defaulting to big.
func Compile(n *Node) (binfield.Prototype, error) {
	return compile(n, binfield.BigEndian)
}

func compile(n *Node, ctxEndian binfield.Endian) (binfield.Prototype, error) {
	endian := ctxEndian
	if n.Endian != "" {
		e, err := parseEndian(n.Endian)
		if err != nil {
			return nil, fmt.Errorf("schemaconfig: field %q: %w", n.Name, err)
		}
		endian = e
	}

	ctor, err := registry.Lookup(n.Type, endian)
	if err != nil {
		return nil, err
	}
	proto := ctor(n.Name)

	switch p := proto.(type) {
	case *binfield.RecordProto:
		return compileRecord(p, n, endian)
	case *binfield.StructProto:
		if err := compileRecord(&p.RecordProto, n, endian); err != nil {
			return nil, err
		}
		return p, nil
	case *binfield.ArrayProto:
		return compileArray(p, n, endian)
	case *binfield.ChoiceProto:
		return compileChoice(p, n, endian)
	case *binfield.IntegerProto:
		p.InitialValue = compileExpr(n.InitialValue)
		p.Value = compileExpr(n.Value)
		p.CheckValue = compileExpr(n.CheckValue)
		return p, nil
	case *binfield.FloatProto:
		p.InitialValue = compileExpr(n.InitialValue)
		p.Value = compileExpr(n.Value)
		p.CheckValue = compileExpr(n.CheckValue)
		return p, nil
	case *binfield.BitFieldProto:
		p.InitialValue = compileExpr(n.InitialValue)
		p.Value = compileExpr(n.Value)
		p.CheckValue = compileExpr(n.CheckValue)
		return p, nil
	case *binfield.FixedStringProto:
		p.Length = compileExpr(n.StringLength)
		p.TrimPadding = n.TrimPadding
		p.PadByte = byte(n.PadByte)
		p.InitialValue = compileExpr(n.InitialValue)
		p.Value = compileExpr(n.Value)
		p.CheckValue = compileExpr(n.CheckValue)
		return p, nil
	case *binfield.CStringProto:
		p.MaxLength = n.MaxLength
		p.InitialValue = compileExpr(n.InitialValue)
		p.Value = compileExpr(n.Value)
		p.CheckValue = compileExpr(n.CheckValue)
		return p, nil
	case *binfield.RestProto:
		return p, nil
	default:
		return nil, fmt.Errorf("schemaconfig: field %q: unsupported prototype %T", n.Name, proto)
	}
}

func compileRecord(p *binfield.RecordProto, n *Node, endian binfield.Endian) error {
	if n.Endian != "" {
		p.Endian = evalctx.Const{Value: n.Endian}
	}
	if len(n.Hide) > 0 {
		p.Hide = make(map[string]bool, len(n.Hide))
		for _, name := range n.Hide {
			p.Hide[name] = true
		}
	}
	p.Fields = make([]binfield.NamedFieldProto, len(n.Fields))
	for i := range n.Fields {
		child := &n.Fields[i]
		childProto, err := compile(child, endian)
		if err != nil {
			return err
		}
		p.Fields[i] = binfield.NamedFieldProto{Name: child.Name, Proto: childProto}
	}
	return nil
}

func compileArray(p *binfield.ArrayProto, n *Node, endian binfield.Endian) (binfield.Prototype, error) {
	if n.Element == nil {
		return nil, fmt.Errorf("schemaconfig: array %q: element is required", n.Name)
	}
	elem, err := compile(n.Element, endian)
	if err != nil {
		return nil, err
	}
	p.Element = elem

	if n.Length != nil {
		p.InitialLength = compileExpr(n.Length)
	}
	if n.ReadUntilEOF {
		p.ReadUntilEOF = true
	}
	if n.ReadUntil != nil {
		field := n.ReadUntil.Field
		if field == "" {
			field = "element"
		}
		want := normalizeScalar(n.ReadUntil.Equals)
		p.ReadUntil = evalctx.Closure(func(ctx *evalctx.Context) (any, error) {
			got, err := ctx.Resolve(field)
			if err != nil {
				return nil, err
			}
			// "element"/"array" resolve to the live Field override itself,
			// not its value — unwrap to the scalar it snapshots to.
			if f, ok := got.(binfield.Field); ok {
				got = f.Snapshot()
			}
			return scalarEquals(got, want), nil
		})
	}
	return p, nil
}

func compileChoice(p *binfield.ChoiceProto, n *Node, endian binfield.Endian) (binfield.Prototype, error) {
	selection := compileExpr(n.Selection)
	p.Selection = evalctx.Closure(func(ctx *evalctx.Context) (any, error) {
		if selection == nil {
			return nil, nil
		}
		v, err := selection.Eval(ctx)
		if err != nil {
			return nil, err
		}
		return normalizeScalar(v), nil
	})
	p.Choices = make(map[any]binfield.Prototype, len(n.Choices))
	for key, child := range n.Choices {
		childProto, err := compile(&child, endian)
		if err != nil {
			return nil, err
		}
		p.Choices[compileKey(key)] = childProto
	}
	return p, nil
}

// compileExpr turns a YAML scalar into a parameter expression: a leading ":"
// names a symbol to resolve against the live field tree, anything else is a
// literal constant.
func compileExpr(v any) evalctx.Expr {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		if after, found := strings.CutPrefix(s, ":"); found {
			return evalctx.Symbol(after)
		}
	}
	return evalctx.Const{Value: normalizeScalar(v)}
}

// compileKey turns a YAML mapping key (always decoded as a string by the
// document's map[string]Node shape) back into the scalar a Choice's
// Selection actually produces: numeric-looking keys become int64, anything
// else is kept as a string selector.
func compileKey(key string) any {
	if n, err := strconv.ParseInt(key, 10, 64); err == nil {
		return n
	}
	return key
}

// normalizeScalar collapses the several numeric kinds a YAML decoder may
// produce into a single representative type, so that values compiled from
// separate document nodes (a Choice's Selection result and its Choices
// keys, an array's read_until.equals and the element it compares against)
// compare equal when the document author intended them to.
func normalizeScalar(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float32:
		return normalizeScalar(float64(n))
	case float64:
		if n == math.Trunc(n) {
			return int64(n)
		}
		return n
	default:
		return v
	}
}

func scalarEquals(a, b any) bool {
	na := normalizeScalar(a)
	nb := normalizeScalar(b)
	return na == nb
}

func parseEndian(s string) (binfield.Endian, error) {
	switch strings.ToLower(s) {
	case "be", "big":
		return binfield.BigEndian, nil
	case "le", "little":
		return binfield.LittleEndian, nil
	default:
		return 0, fmt.Errorf("unknown endian %q", s)
	}
}
