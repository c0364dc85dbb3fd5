package binfield

import (
	"bytes"
	"fmt"

	"github.com/binstruct/binstruct/binerr"
	"github.com/binstruct/binstruct/bitio"
	"github.com/binstruct/binstruct/evalctx"
)

// ---------------------------------------------------------------------
// FixedString — :length bytes, padded with a trim byte.
// ---------------------------------------------------------------------

// FixedStringProto describes a fixed-width byte string, padded to Length
// with PadByte (default 0) on write and optionally trimmed of trailing
// PadByte on read.
type FixedStringProto struct {
	Name         string
	Length       evalctx.Expr // constant or symbolic reference, evaluated per instance
	TrimPadding  bool
	PadByte      byte
	InitialValue evalctx.Expr
	Value        evalctx.Expr
	CheckValue   evalctx.Expr

	sanitized bool
}

func (p *FixedStringProto) Sanitize() error {
	if p.Length == nil {
		return fmt.Errorf("binstruct: fixed string field %q: length is required", p.Name)
	}
	p.sanitized = true
	return nil
}

func (p *FixedStringProto) Instantiate(initial any, parent Field) (Field, error) {
	if !p.sanitized {
		if err := p.Sanitize(); err != nil {
			return nil, err
		}
	}
	f := &FixedStringField{proto: p}
	f.base = newBase(p.Name, paramMap(p.InitialValue, p.Value, p.CheckValue))
	f.params["length"] = p.Length
	f.setParent(parent)
	f.Clear()
	if initial != nil {
		if err := f.Assign(initial); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// FixedStringField is a live instance of FixedStringProto.
type FixedStringField struct {
	base
	proto *FixedStringProto
	value string
}

func (f *FixedStringField) Method(name string) (any, bool, error) { return f.baseMethod(name) }

func (f *FixedStringField) length() int {
	v, err := evalctx.Eval(f.proto.Length, f, nil)
	if err != nil {
		return 0
	}
	n, ok := toInt64(v)
	if !ok {
		return 0
	}
	return int(n)
}

func (f *FixedStringField) NumBits() uint64 { return uint64(f.length()) * 8 }

func (f *FixedStringField) Clear() {
	f.value = ""
	if f.proto.InitialValue != nil {
		if v, err := evalctx.Eval(f.proto.InitialValue, f, nil); err == nil {
			if s, ok := v.(string); ok {
				f.value = s
			}
		}
	}
}

func (f *FixedStringField) IsClear() bool {
	def := ""
	if f.proto.InitialValue != nil {
		if v, err := evalctx.Eval(f.proto.InitialValue, f, nil); err == nil {
			if s, ok := v.(string); ok {
				def = s
			}
		}
	}
	return f.value == def
}

func (f *FixedStringField) Snapshot() any { return f.value }

func (f *FixedStringField) Assign(v any) error {
	if f.proto.Value != nil {
		return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: "value is computed"}
	}
	s, ok := v.(string)
	if !ok {
		return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: "cannot assign non-string to fixed string"}
	}
	f.value = s
	return nil
}

func (f *FixedStringField) padByte() byte {
	if f.proto.PadByte != 0 {
		return f.proto.PadByte
	}
	return 0
}

func (f *FixedStringField) Read(s *bitio.Stream) error {
	n := f.length()
	b, err := s.ReadBytes(n)
	if err != nil {
		return err
	}
	if f.proto.TrimPadding {
		b = bytes.TrimRight(b, string(f.padByte()))
	}
	f.value = string(b)
	return checkValue(f.proto.CheckValue, f, f.proto.Name, f.Snapshot())
}

func (f *FixedStringField) Write(s *bitio.Stream) error {
	value := f.value
	if f.proto.Value != nil {
		v, err := evalctx.Eval(f.proto.Value, f, nil)
		if err != nil {
			return err
		}
		str, ok := v.(string)
		if !ok {
			return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: "value expression did not produce a string"}
		}
		value = str
	}

	n := f.length()
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = f.padByte()
	}
	copy(buf, value)
	return s.WriteBytes(buf)
}

// ---------------------------------------------------------------------
// CString — null-terminated, optionally bounded by MaxLength.
// ---------------------------------------------------------------------

// CStringProto describes a null-terminated string, read until a 0 byte or
// MaxLength bytes (if MaxLength > 0), and written with a trailing 0 byte.
type CStringProto struct {
	Name         string
	MaxLength    int
	InitialValue evalctx.Expr
	Value        evalctx.Expr
	CheckValue   evalctx.Expr

	sanitized bool
}

func (p *CStringProto) Sanitize() error {
	p.sanitized = true
	return nil
}

func (p *CStringProto) Instantiate(initial any, parent Field) (Field, error) {
	if !p.sanitized {
		if err := p.Sanitize(); err != nil {
			return nil, err
		}
	}
	f := &CStringField{proto: p}
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

// CStringField is a live instance of CStringProto.
type CStringField struct {
	base
	proto *CStringProto
	value string
}

func (f *CStringField) Method(name string) (any, bool, error) { return f.baseMethod(name) }

func (f *CStringField) NumBits() uint64 { return uint64(len(f.value)+1) * 8 }

func (f *CStringField) Clear() {
	f.value = ""
	if f.proto.InitialValue != nil {
		if v, err := evalctx.Eval(f.proto.InitialValue, f, nil); err == nil {
			if s, ok := v.(string); ok {
				f.value = s
			}
		}
	}
}

func (f *CStringField) IsClear() bool {
	def := ""
	if f.proto.InitialValue != nil {
		if v, err := evalctx.Eval(f.proto.InitialValue, f, nil); err == nil {
			if s, ok := v.(string); ok {
				def = s
			}
		}
	}
	return f.value == def
}

func (f *CStringField) Snapshot() any { return f.value }

func (f *CStringField) Assign(v any) error {
	if f.proto.Value != nil {
		return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: "value is computed"}
	}
	s, ok := v.(string)
	if !ok {
		return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: "cannot assign non-string to c-string"}
	}
	f.value = s
	return nil
}

func (f *CStringField) Read(s *bitio.Stream) error {
	var out []byte
	for {
		if f.proto.MaxLength > 0 && len(out) >= f.proto.MaxLength {
			break
		}
		b, err := s.ReadBytes(1)
		if err != nil {
			return err
		}
		if b[0] == 0 {
			break
		}
		out = append(out, b[0])
	}
	f.value = string(out)
	return checkValue(f.proto.CheckValue, f, f.proto.Name, f.Snapshot())
}

func (f *CStringField) Write(s *bitio.Stream) error {
	value := f.value
	if f.proto.Value != nil {
		v, err := evalctx.Eval(f.proto.Value, f, nil)
		if err != nil {
			return err
		}
		str, ok := v.(string)
		if !ok {
			return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: "value expression did not produce a string"}
		}
		value = str
	}
	if err := s.WriteBytes([]byte(value)); err != nil {
		return err
	}
	return s.WriteBytes([]byte{0})
}

// ---------------------------------------------------------------------
// Rest — reads to EOF, writes its buffered bytes verbatim.
// ---------------------------------------------------------------------

// RestProto describes a field that reads all remaining bytes of the stream.
type RestProto struct {
	Name string

	sanitized bool
}

func (p *RestProto) Sanitize() error {
	p.sanitized = true
	return nil
}

func (p *RestProto) Instantiate(initial any, parent Field) (Field, error) {
	if !p.sanitized {
		if err := p.Sanitize(); err != nil {
			return nil, err
		}
	}
	f := &RestField{proto: p}
	f.base = newBase(p.Name, nil)
	f.setParent(parent)
	if initial != nil {
		if err := f.Assign(initial); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// RestField is a live instance of RestProto.
type RestField struct {
	base
	proto *RestProto
	value []byte
}

func (f *RestField) Method(name string) (any, bool, error) { return f.baseMethod(name) }
func (f *RestField) NumBits() uint64                        { return uint64(len(f.value)) * 8 }
func (f *RestField) Clear()                                 { f.value = nil }
func (f *RestField) IsClear() bool                          { return len(f.value) == 0 }
func (f *RestField) Snapshot() any                          { return append([]byte(nil), f.value...) }

func (f *RestField) Assign(v any) error {
	b, ok := v.([]byte)
	if !ok {
		return &binerr.InvalidAssignmentError{Field: f.proto.Name, Reason: "cannot assign non-[]byte to rest"}
	}
	f.value = append([]byte(nil), b...)
	return nil
}

func (f *RestField) Read(s *bitio.Stream) error {
	var out []byte
	for {
		b, err := s.ReadBytes(1)
		if err != nil {
			break
		}
		out = append(out, b...)
	}
	f.value = out
	return nil
}

func (f *RestField) Write(s *bitio.Stream) error {
	return s.WriteBytes(f.value)
}
