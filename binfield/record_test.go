package binfield_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binstruct/binstruct/binerr"
	"github.com/binstruct/binstruct/binfield"
	"github.com/binstruct/binstruct/bitio"
	"github.com/binstruct/binstruct/evalctx"
)

// TestStructBitFieldsPackAndRoundAtByteBoundary is spec scenario 3: bit1le a,
// bit2le b, uint8 c, bit1le d; a and b pack into one byte, c takes the next
// whole byte, and d is padded out to a full trailing byte.
func TestStructBitFieldsPackAndRoundAtByteBoundary(t *testing.T) {
	proto := &binfield.StructProto{RecordProto: binfield.RecordProto{
		Name: "s",
		Fields: []binfield.NamedFieldProto{
			{Name: "a", Proto: &binfield.BitFieldProto{Name: "a", Bits: 1, Endian: bitio.LittleEndian}},
			{Name: "b", Proto: &binfield.BitFieldProto{Name: "b", Bits: 2, Endian: bitio.LittleEndian}},
			{Name: "c", Proto: &binfield.IntegerProto{Name: "c", Bits: 8}},
			{Name: "d", Proto: &binfield.BitFieldProto{Name: "d", Bits: 1, Endian: bitio.LittleEndian}},
		},
	}}

	f, err := proto.Instantiate(nil, nil)
	require.NoError(t, err)
	require.NoError(t, f.Assign(map[string]any{"a": uint64(1), "b": uint64(2), "c": int64(3), "d": uint64(1)}))

	assert.Equal(t, int64(3), binfield.NumBytes(f))

	var buf bytes.Buffer
	require.NoError(t, f.Write(bitio.NewWriter(&buf)))
	assert.Equal(t, []byte{0x05, 0x03, 0x01}, buf.Bytes())

	f2, err := proto.Instantiate(nil, nil)
	require.NoError(t, err)
	require.NoError(t, f2.Read(bitio.NewReader(bytes.NewReader(buf.Bytes()))))
	snap := f2.Snapshot().(binfield.Snapshot).Map()
	assert.Equal(t, uint64(1), snap["a"])
	assert.Equal(t, uint64(2), snap["b"])
	assert.Equal(t, uint64(3), snap["c"])
	assert.Equal(t, uint64(1), snap["d"])
}

// TestNestedEndianStructInheritsOuterOrPerFieldEndian is spec scenario 5: an
// outer big-endian Record containing a little-endian nested Struct.
func TestNestedEndianStructInheritsOuterOrPerFieldEndian(t *testing.T) {
	proto := &binfield.RecordProto{
		Name: "outer",
		Fields: []binfield.NamedFieldProto{
			{Name: "a", Proto: &binfield.IntegerProto{Name: "a", Bits: 16, Endian: binfield.BigEndian}},
			{Name: "s", Proto: &binfield.StructProto{RecordProto: binfield.RecordProto{
				Name: "s",
				Fields: []binfield.NamedFieldProto{
					{Name: "b", Proto: &binfield.IntegerProto{Name: "b", Bits: 16, Endian: binfield.LittleEndian}},
					{Name: "c", Proto: &binfield.IntegerProto{Name: "c", Bits: 16, Endian: binfield.LittleEndian}},
				},
			}}},
			{Name: "d", Proto: &binfield.IntegerProto{Name: "d", Bits: 16, Endian: binfield.BigEndian}},
		},
	}

	f, err := proto.Instantiate(nil, nil)
	require.NoError(t, err)

	input := []byte{0x00, 0x01, 0x02, 0x00, 0x03, 0x00, 0x00, 0x04}
	require.NoError(t, f.Read(bitio.NewReader(bytes.NewReader(input))))

	snap := f.Snapshot().(binfield.Snapshot).Map()
	assert.Equal(t, uint64(1), snap["a"])
	assert.Equal(t, uint64(4), snap["d"])

	sSnap := snap["s"].(binfield.Snapshot).Map()
	assert.Equal(t, uint64(2), sSnap["b"])
	assert.Equal(t, uint64(3), sSnap["c"])
}

// TestValueDependentLengthField is spec scenario 6: a FixedString whose
// length is a symbolic reference to a sibling uint8 field.
func TestValueDependentLengthField(t *testing.T) {
	proto := &binfield.RecordProto{
		Name: "msg",
		Fields: []binfield.NamedFieldProto{
			{Name: "len", Proto: &binfield.IntegerProto{Name: "len", Bits: 8}},
			{Name: "payload", Proto: &binfield.FixedStringProto{Name: "payload", Length: evalctx.Symbol("len")}},
		},
	}

	f, err := proto.Instantiate(nil, nil)
	require.NoError(t, err)
	require.NoError(t, f.Assign(map[string]any{"len": int64(3), "payload": "abc"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(bitio.NewWriter(&buf)))
	assert.Equal(t, []byte{0x03, 0x61, 0x62, 0x63}, buf.Bytes())

	f2, err := proto.Instantiate(nil, nil)
	require.NoError(t, err)
	require.NoError(t, f2.Read(bitio.NewReader(bytes.NewReader(buf.Bytes()))))
	snap := f2.Snapshot().(binfield.Snapshot).Map()
	assert.Equal(t, uint64(3), snap["len"])
	assert.Equal(t, "abc", snap["payload"])
}

func TestRecordRejectsDuplicateFieldName(t *testing.T) {
	proto := &binfield.RecordProto{
		Name: "dup",
		Fields: []binfield.NamedFieldProto{
			{Name: "x", Proto: &binfield.IntegerProto{Name: "x", Bits: 8}},
			{Name: "x", Proto: &binfield.IntegerProto{Name: "x", Bits: 8}},
		},
	}
	err := proto.Sanitize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, binerr.ErrNameCollision))
}

func TestRecordRejectsReservedFieldName(t *testing.T) {
	proto := &binfield.RecordProto{
		Name: "reserved",
		Fields: []binfield.NamedFieldProto{
			{Name: "parent", Proto: &binfield.IntegerProto{Name: "parent", Bits: 8}},
		},
	}
	err := proto.Sanitize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, binerr.ErrNameCollision))
}

func TestRecordRejectsAnonymousFieldUnlessStruct(t *testing.T) {
	proto := &binfield.RecordProto{
		Name: "plain",
		Fields: []binfield.NamedFieldProto{
			{Name: "", Proto: &binfield.IntegerProto{Name: "x", Bits: 8}},
		},
	}
	err := proto.Sanitize()
	require.Error(t, err)

	structProto := &binfield.StructProto{RecordProto: binfield.RecordProto{
		Name: "withAnon",
		Fields: []binfield.NamedFieldProto{
			{Name: "", Proto: &binfield.RecordProto{Name: "inner", Fields: []binfield.NamedFieldProto{
				{Name: "y", Proto: &binfield.IntegerProto{Name: "y", Bits: 8}},
			}}},
		},
	}}
	require.NoError(t, structProto.Sanitize())
}

func TestRecordHideOmitsFieldFromSnapshotButKeepsItAddressable(t *testing.T) {
	proto := &binfield.RecordProto{
		Name: "withHidden",
		Hide: map[string]bool{"secret": true},
		Fields: []binfield.NamedFieldProto{
			{Name: "visible", Proto: &binfield.IntegerProto{Name: "visible", Bits: 8}},
			{Name: "secret", Proto: &binfield.IntegerProto{Name: "secret", Bits: 8}},
		},
	}
	f, err := proto.Instantiate(map[string]any{"visible": int64(1), "secret": int64(2)}, nil)
	require.NoError(t, err)

	snap := f.Snapshot().(binfield.Snapshot)
	assert.NotContains(t, snap.Names, "secret")
	assert.Contains(t, snap.Names, "visible")

	v, ok, err := f.(*binfield.Record).Method("secret")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), v)
}

func TestRecordCloneIsIndependent(t *testing.T) {
	proto := &binfield.RecordProto{
		Name: "pair",
		Fields: []binfield.NamedFieldProto{
			{Name: "x", Proto: &binfield.IntegerProto{Name: "x", Bits: 8}},
		},
	}
	f1, err := proto.Instantiate(map[string]any{"x": int64(1)}, nil)
	require.NoError(t, err)
	f2, err := proto.Instantiate(map[string]any{"x": int64(2)}, nil)
	require.NoError(t, err)

	require.NoError(t, f1.Assign(map[string]any{"x": int64(99)}))
	snap2 := f2.Snapshot().(binfield.Snapshot).Map()
	assert.Equal(t, uint64(2), snap2["x"])
}

func TestSnapshotMarshalsJSONInDeclarationOrder(t *testing.T) {
	proto := &binfield.RecordProto{
		Name: "pair",
		Fields: []binfield.NamedFieldProto{
			{Name: "z", Proto: &binfield.IntegerProto{Name: "z", Bits: 8}},
			{Name: "a", Proto: &binfield.IntegerProto{Name: "a", Bits: 8}},
		},
	}
	f, err := proto.Instantiate(map[string]any{"z": int64(1), "a": int64(2)}, nil)
	require.NoError(t, err)

	out, err := json.Marshal(f.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":2}`, string(out))
}
