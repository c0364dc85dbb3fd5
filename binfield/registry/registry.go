// Package registry resolves a schema type name — as written in a
// declarative schema document or a programmatic field list — to a
// Constructor for the binfield.Prototype it names.
//
// Integer and float names are endian-polymorphic: "int16" with no "be"/"le"
// suffix composes with the nearest enclosing :endian parameter at schema
// build time, the way the teacher's pgtype composes a Codec from a type OID
// plus the active format code. Bit-field names ("bit3", "bit3le") ignore
// that context entirely — their own suffix, or its absence, is the whole
// word on bit order.
package registry

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/binstruct/binstruct/binerr"
	"github.com/binstruct/binstruct/binfield"
	"github.com/binstruct/binstruct/bitio"
)

// Constructor manufactures a fresh, unsanitized prototype named name. Callers
// fill in the remaining fields (InitialValue, Value, CheckValue, children,
// ...) before calling Sanitize or Instantiate.
type Constructor func(name string) binfield.Prototype

var (
	integerRe = regexp.MustCompile(`^u?int(8|16|32|64)(be|le)?$`)
	bitRe     = regexp.MustCompile(`^bit(\d+)(le)?$`)
	floatRe   = regexp.MustCompile(`^float(32|64)(be|le)?$`)
)

// Lookup resolves name to a Constructor. ctxEndian is the byte order of the
// nearest enclosing Record/Struct's :endian parameter, used to complete an
// endian-polymorphic primitive name that carries no explicit be/le suffix.
func Lookup(name string, ctxEndian binfield.Endian) (Constructor, error) {
	canon := strings.ToLower(strings.ReplaceAll(name, "-", "_"))

	switch canon {
	case "fixed_string", "fixedstring":
		return func(n string) binfield.Prototype { return &binfield.FixedStringProto{Name: n} }, nil
	case "c_string", "cstring":
		return func(n string) binfield.Prototype { return &binfield.CStringProto{Name: n} }, nil
	case "rest":
		return func(n string) binfield.Prototype { return &binfield.RestProto{Name: n} }, nil
	case "record":
		return func(n string) binfield.Prototype { return &binfield.RecordProto{Name: n} }, nil
	case "struct":
		return func(n string) binfield.Prototype {
			return &binfield.StructProto{RecordProto: binfield.RecordProto{Name: n}}
		}, nil
	case "array":
		return func(n string) binfield.Prototype { return &binfield.ArrayProto{Name: n} }, nil
	case "choice":
		return func(n string) binfield.Prototype { return &binfield.ChoiceProto{Name: n} }, nil
	}

	if m := bitRe.FindStringSubmatch(canon); m != nil {
		bits, _ := strconv.Atoi(m[1])
		endian := bitio.BigEndian
		if m[2] == "le" {
			endian = bitio.LittleEndian
		}
		return func(n string) binfield.Prototype {
			return &binfield.BitFieldProto{Name: n, Bits: bits, Endian: endian}
		}, nil
	}

	if m := integerRe.FindStringSubmatch(canon); m != nil {
		signed := strings.HasPrefix(canon, "int")
		bits, _ := strconv.Atoi(m[1])
		endian, err := resolveEndian(bits, m[2], ctxEndian)
		if err != nil {
			return nil, err
		}
		return func(n string) binfield.Prototype {
			return &binfield.IntegerProto{Name: n, Bits: bits, Signed: signed, Endian: endian}
		}, nil
	}

	if m := floatRe.FindStringSubmatch(canon); m != nil {
		bits, _ := strconv.Atoi(m[1])
		endian, err := resolveEndian(bits, m[2], ctxEndian)
		if err != nil {
			return nil, err
		}
		return func(n string) binfield.Prototype {
			return &binfield.FloatProto{Name: n, Bits: bits, Endian: endian}
		}, nil
	}

	return nil, &binerr.UnregisteredTypeError{Name: name}
}

// resolveEndian composes the final byte order for an endian-polymorphic
// primitive: an explicit suffix always wins; 8-bit widths have no byte
// order and default to big; otherwise the enclosing context applies.
func resolveEndian(bits int, suffix string, ctxEndian binfield.Endian) (binfield.Endian, error) {
	switch suffix {
	case "be":
		return binfield.BigEndian, nil
	case "le":
		return binfield.LittleEndian, nil
	case "":
		if bits <= 8 {
			return binfield.BigEndian, nil
		}
		return ctxEndian, nil
	default:
		return 0, fmt.Errorf("binstruct: registry: unknown endian suffix %q", suffix)
	}
}
