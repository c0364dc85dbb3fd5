package binfield

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/binstruct/binstruct/binerr"
	"github.com/binstruct/binstruct/bitio"
	"github.com/binstruct/binstruct/evalctx"
)

// Endian selects big- or little-endian byte order for a multi-byte
// primitive. It is distinct from bitio.Endian, which selects bit order
// within a byte.
type Endian int

const (
	BigEndian Endian = iota
	LittleEndian
)

func (e Endian) bitioEndian() bitio.Endian {
	if e == LittleEndian {
		return bitio.LittleEndian
	}
	return bitio.BigEndian
}

// checkValue evaluates proto's check_value expression (if any) against got,
// the just-read value, failing with binerr.ValidityError on mismatch.
func checkValue(expr evalctx.Expr, node evalctx.Node, fieldName string, got any) error {
	if expr == nil {
		return nil
	}
	want, err := evalctx.Eval(expr, node, nil)
	if err != nil {
		return err
	}
	if !valuesEqual(got, want) {
		return &binerr.ValidityError{Field: fieldName, Got: got, Expected: want}
	}
	return nil
}

func valuesEqual(a, b any) bool {
	an, aok := toInt64(a)
	bn, bok := toInt64(b)
	if aok && bok {
		return an == bn
	}
	return a == b
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}

// ---------------------------------------------------------------------
// Integer
// ---------------------------------------------------------------------

// IntegerProto describes a signed or unsigned integer of 1..64 bits. Widths
// that are a multiple of 8 are byte-aligned; all others draw from the
// BitStream's bit buffer, MSB-first for BigEndian and LSB-first for
// LittleEndian.
type IntegerProto struct {
	Name         string
	Bits         int
	Signed       bool
	Endian       Endian
	InitialValue evalctx.Expr
	Value        evalctx.Expr
	CheckValue   evalctx.Expr

	sanitized bool
}

func (p *IntegerProto) Sanitize() error {
	if p.Bits < 1 || p.Bits > 64 {
		return fmt.Errorf("binstruct: integer field %q: width must be 1..64 bits, got %d", p.Name, p.Bits)
	}
	p.sanitized = true
	return nil
}

func (p *IntegerProto) Instantiate(initial any, parent Field) (Field, error) {
	if !p.sanitized {
		if err := p.Sanitize(); err != nil {
			return nil, err
		}
	}
	f := &IntegerField{proto: p}
	f.base = newBase(p.Name, paramMap(p.InitialValue, p.Value, p.CheckValue))
	f.setParent(parent)
	f.Clear()
	if initial != nil {
		if err := f.Assign(initial); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func paramMap(initial, value, check evalctx.Expr) map[string]evalctx.Expr {
	m := map[string]evalctx.Expr{}
	if initial != nil {
		m["initial_value"] = initial
	}
	if value != nil {
		m["value"] = value
	}
	if check != nil {
		m["check_value"] = check
	}
	return m
}

// IntegerField is a live instance of IntegerProto.
type IntegerField struct {
	base
	proto    *IntegerProto
	value    int64
	assigned bool
}

func (f *IntegerField) Method(name string) (any, bool, error) { return f.baseMethod(name) }

func (f *IntegerField) NumBits() uint64 { return uint64(f.proto.Bits) }

func (f *IntegerField) Clear() {
	f.value = 0
	f.assigned = false
	if f.proto.InitialValue != nil {
		v, err := evalctx.Eval(f.proto.InitialValue, f, nil)
		if err == nil {
			if n, ok := toInt64(v); ok {
				f.value = n
			}
		}
	}
}

func (f *IntegerField) IsClear() bool {
	def := int64(0)
	if f.proto.InitialValue != nil {
		if v, err := evalctx.Eval(f.proto.InitialValue, f, nil); err == nil {
			if n, ok := toInt64(v); ok {
				def = n
			}
		}
	}
	return f.value == def
}

func (f *IntegerField) Snapshot() any {
	if f.Signed() {
		return f.value
	}
	return uint64(f.value)
}

// Signed reports whether this field is a signed integer kind.
func (f *IntegerField) Signed() bool { return f.proto.Signed }

func (f *IntegerField) Assign(v any) error {
	if f.proto.Value != nil {
		return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: "value is computed"}
	}
	n, ok := toInt64(v)
	if !ok {
		return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: fmt.Sprintf("cannot assign %T to integer", v)}
	}
	f.value = n
	f.assigned = true
	return nil
}

func (f *IntegerField) Read(s *bitio.Stream) error {
	var raw uint64
	var err error
	if f.proto.Bits%8 == 0 {
		b, rerr := s.ReadBytes(f.proto.Bits / 8)
		if rerr != nil {
			return rerr
		}
		raw = bytesToUint(b, f.proto.Endian)
	} else {
		raw, err = s.ReadBits(f.proto.Bits, f.proto.Endian.bitioEndian())
		if err != nil {
			return err
		}
	}

	f.value = signExtend(raw, f.proto.Bits, f.proto.Signed)
	f.assigned = true

	return checkValue(f.proto.CheckValue, f, f.proto.Name, f.Snapshot())
}

func (f *IntegerField) Write(s *bitio.Stream) error {
	value := f.value
	if f.proto.Value != nil {
		v, err := evalctx.Eval(f.proto.Value, f, nil)
		if err != nil {
			return err
		}
		n, ok := toInt64(v)
		if !ok {
			return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: "value expression did not produce an integer"}
		}
		value = n
	}

	raw := uint64(value) & maskBits(f.proto.Bits)

	if f.proto.Bits%8 == 0 {
		b := uintToBytes(raw, f.proto.Bits/8, f.proto.Endian)
		return s.WriteBytes(b)
	}
	return s.WriteBits(raw, f.proto.Bits, f.proto.Endian.bitioEndian())
}

func maskBits(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}

func signExtend(raw uint64, bits int, signed bool) int64 {
	if !signed {
		return int64(raw)
	}
	signBit := uint64(1) << (bits - 1)
	if raw&signBit != 0 && bits < 64 {
		raw |= ^uint64(0) << bits
	}
	return int64(raw)
}

func bytesToUint(b []byte, endian Endian) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		if endian == LittleEndian {
			return uint64(binary.LittleEndian.Uint16(b))
		}
		return uint64(binary.BigEndian.Uint16(b))
	case 4:
		if endian == LittleEndian {
			return uint64(binary.LittleEndian.Uint32(b))
		}
		return uint64(binary.BigEndian.Uint32(b))
	case 8:
		if endian == LittleEndian {
			return binary.LittleEndian.Uint64(b)
		}
		return binary.BigEndian.Uint64(b)
	default:
		// Uncommon width (e.g. 24-bit/40-bit): assemble byte by byte.
		var v uint64
		if endian == LittleEndian {
			for i := len(b) - 1; i >= 0; i-- {
				v = v<<8 | uint64(b[i])
			}
		} else {
			for i := 0; i < len(b); i++ {
				v = v<<8 | uint64(b[i])
			}
		}
		return v
	}
}

func uintToBytes(v uint64, n int, endian Endian) []byte {
	switch n {
	case 1:
		return []byte{byte(v)}
	case 2:
		b := make([]byte, 2)
		if endian == LittleEndian {
			binary.LittleEndian.PutUint16(b, uint16(v))
		} else {
			binary.BigEndian.PutUint16(b, uint16(v))
		}
		return b
	case 4:
		b := make([]byte, 4)
		if endian == LittleEndian {
			binary.LittleEndian.PutUint32(b, uint32(v))
		} else {
			binary.BigEndian.PutUint32(b, uint32(v))
		}
		return b
	case 8:
		b := make([]byte, 8)
		if endian == LittleEndian {
			binary.LittleEndian.PutUint64(b, v)
		} else {
			binary.BigEndian.PutUint64(b, v)
		}
		return b
	default:
		b := make([]byte, n)
		if endian == LittleEndian {
			for i := 0; i < n; i++ {
				b[i] = byte(v >> (8 * i))
			}
		} else {
			for i := 0; i < n; i++ {
				b[n-1-i] = byte(v >> (8 * i))
			}
		}
		return b
	}
}

// ---------------------------------------------------------------------
// BitField — always bit-aligned, endian selects MSB-first vs LSB-first.
// ---------------------------------------------------------------------

// BitFieldProto describes a plain N-bit unsigned field that never aligns to
// a byte boundary regardless of width, used for the bitN/bitNle family.
type BitFieldProto struct {
	Name         string
	Bits         int
	Endian       bitio.Endian
	InitialValue evalctx.Expr
	Value        evalctx.Expr
	CheckValue   evalctx.Expr

	sanitized bool
}

func (p *BitFieldProto) Sanitize() error {
	if p.Bits < 1 {
		return fmt.Errorf("binstruct: bit field %q: width must be >= 1, got %d", p.Name, p.Bits)
	}
	p.sanitized = true
	return nil
}

func (p *BitFieldProto) Instantiate(initial any, parent Field) (Field, error) {
	if !p.sanitized {
		if err := p.Sanitize(); err != nil {
			return nil, err
		}
	}
	f := &BitField{proto: p}
	f.base = newBase(p.Name, paramMap(p.InitialValue, p.Value, p.CheckValue))
	f.setParent(parent)
	f.Clear()
	if initial != nil {
		if err := f.Assign(initial); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// BitField is a live instance of BitFieldProto.
type BitField struct {
	base
	proto *BitFieldProto
	value uint64
}

func (f *BitField) Method(name string) (any, bool, error) { return f.baseMethod(name) }
func (f *BitField) NumBits() uint64                        { return uint64(f.proto.Bits) }

// alwaysBitAligned marks BitField as never triggering byte-boundary
// realignment in an enclosing Record/Array, regardless of its width.
func (f *BitField) alwaysBitAligned() bool { return true }

func (f *BitField) Clear() {
	f.value = 0
	if f.proto.InitialValue != nil {
		if v, err := evalctx.Eval(f.proto.InitialValue, f, nil); err == nil {
			if n, ok := toInt64(v); ok {
				f.value = uint64(n)
			}
		}
	}
}

func (f *BitField) IsClear() bool {
	def := uint64(0)
	if f.proto.InitialValue != nil {
		if v, err := evalctx.Eval(f.proto.InitialValue, f, nil); err == nil {
			if n, ok := toInt64(v); ok {
				def = uint64(n)
			}
		}
	}
	return f.value == def
}

func (f *BitField) Snapshot() any { return f.value }

func (f *BitField) Assign(v any) error {
	if f.proto.Value != nil {
		return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: "value is computed"}
	}
	n, ok := toInt64(v)
	if !ok {
		return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: fmt.Sprintf("cannot assign %T to bit field", v)}
	}
	f.value = uint64(n) & maskBits(f.proto.Bits)
	return nil
}

func (f *BitField) Read(s *bitio.Stream) error {
	v, err := s.ReadBits(f.proto.Bits, f.proto.Endian)
	if err != nil {
		return err
	}
	f.value = v
	return checkValue(f.proto.CheckValue, f, f.proto.Name, f.Snapshot())
}

func (f *BitField) Write(s *bitio.Stream) error {
	value := f.value
	if f.proto.Value != nil {
		v, err := evalctx.Eval(f.proto.Value, f, nil)
		if err != nil {
			return err
		}
		n, ok := toInt64(v)
		if !ok {
			return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: "value expression did not produce an integer"}
		}
		value = uint64(n)
	}
	return s.WriteBits(value&maskBits(f.proto.Bits), f.proto.Bits, f.proto.Endian)
}

// ---------------------------------------------------------------------
// Float
// ---------------------------------------------------------------------

// FloatProto describes an IEEE-754 float, 32 or 64 bits wide.
type FloatProto struct {
	Name         string
	Bits         int // 32 or 64
	Endian       Endian
	InitialValue evalctx.Expr
	Value        evalctx.Expr
	CheckValue   evalctx.Expr

	sanitized bool
}

func (p *FloatProto) Sanitize() error {
	if p.Bits != 32 && p.Bits != 64 {
		return fmt.Errorf("binstruct: float field %q: width must be 32 or 64, got %d", p.Name, p.Bits)
	}
	p.sanitized = true
	return nil
}

func (p *FloatProto) Instantiate(initial any, parent Field) (Field, error) {
	if !p.sanitized {
		if err := p.Sanitize(); err != nil {
			return nil, err
		}
	}
	f := &FloatField{proto: p}
	f.base = newBase(p.Name, paramMap(p.InitialValue, p.Value, p.CheckValue))
	f.setParent(parent)
	f.Clear()
	if initial != nil {
		if err := f.Assign(initial); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// FloatField is a live instance of FloatProto.
type FloatField struct {
	base
	proto *FloatProto
	value float64
}

func (f *FloatField) Method(name string) (any, bool, error) { return f.baseMethod(name) }
func (f *FloatField) NumBits() uint64                        { return uint64(f.proto.Bits) }

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		if i, ok := toInt64(v); ok {
			return float64(i), true
		}
		return 0, false
	}
}

func (f *FloatField) Clear() {
	f.value = 0
	if f.proto.InitialValue != nil {
		if v, err := evalctx.Eval(f.proto.InitialValue, f, nil); err == nil {
			if n, ok := toFloat64(v); ok {
				f.value = n
			}
		}
	}
}

func (f *FloatField) IsClear() bool {
	def := 0.0
	if f.proto.InitialValue != nil {
		if v, err := evalctx.Eval(f.proto.InitialValue, f, nil); err == nil {
			if n, ok := toFloat64(v); ok {
				def = n
			}
		}
	}
	return f.value == def
}

func (f *FloatField) Snapshot() any {
	if f.proto.Bits == 32 {
		return float32(f.value)
	}
	return f.value
}

func (f *FloatField) Assign(v any) error {
	if f.proto.Value != nil {
		return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: "value is computed"}
	}
	n, ok := toFloat64(v)
	if !ok {
		return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: fmt.Sprintf("cannot assign %T to float", v)}
	}
	f.value = n
	return nil
}

func (f *FloatField) Read(s *bitio.Stream) error {
	b, err := s.ReadBytes(f.proto.Bits / 8)
	if err != nil {
		return err
	}
	if f.proto.Bits == 32 {
		raw := bytesToUint(b, f.proto.Endian)
		f.value = float64(math.Float32frombits(uint32(raw)))
	} else {
		raw := bytesToUint(b, f.proto.Endian)
		f.value = math.Float64frombits(raw)
	}
	return checkValue(f.proto.CheckValue, f, f.proto.Name, f.Snapshot())
}

func (f *FloatField) Write(s *bitio.Stream) error {
	value := f.value
	if f.proto.Value != nil {
		v, err := evalctx.Eval(f.proto.Value, f, nil)
		if err != nil {
			return err
		}
		n, ok := toFloat64(v)
		if !ok {
			return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: "value expression did not produce a float"}
		}
		value = n
	}

	var raw uint64
	if f.proto.Bits == 32 {
		raw = uint64(math.Float32bits(float32(value)))
	} else {
		raw = math.Float64bits(value)
	}
	return s.WriteBytes(uintToBytes(raw, f.proto.Bits/8, f.proto.Endian))
}
