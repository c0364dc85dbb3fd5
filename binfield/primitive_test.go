package binfield_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binstruct/binstruct/binerr"
	"github.com/binstruct/binstruct/binfield"
	"github.com/binstruct/binstruct/bitio"
	"github.com/binstruct/binstruct/evalctx"
)

func TestIntegerRoundTripBigEndian(t *testing.T) {
	proto := &binfield.IntegerProto{Name: "n", Bits: 16, Signed: true, Endian: binfield.BigEndian}
	f, err := proto.Instantiate(int64(-2), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(bitio.NewWriter(&buf)))
	assert.Equal(t, []byte{0xFF, 0xFE}, buf.Bytes())

	f2, err := proto.Instantiate(nil, nil)
	require.NoError(t, err)
	require.NoError(t, f2.Read(bitio.NewReader(bytes.NewReader(buf.Bytes()))))
	assert.Equal(t, int64(-2), f2.Snapshot())
}

func TestIntegerRoundTripLittleEndian(t *testing.T) {
	proto := &binfield.IntegerProto{Name: "n", Bits: 32, Signed: false, Endian: binfield.LittleEndian}
	f, err := proto.Instantiate(uint64(0x01020304), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(bitio.NewWriter(&buf)))
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf.Bytes())
}

func TestIntegerCheckValueFailureRaisesValidityError(t *testing.T) {
	proto := &binfield.IntegerProto{
		Name: "magic", Bits: 8, Endian: binfield.BigEndian,
		CheckValue: evalctx.Const{Value: int64(0x42)},
	}
	f, err := proto.Instantiate(nil, nil)
	require.NoError(t, err)

	err = f.Read(bitio.NewReader(bytes.NewReader([]byte{0x01})))
	require.Error(t, err)
	assert.True(t, errors.Is(err, binerr.ErrValidity))
}

func TestIntegerComputedValueRejectsAssign(t *testing.T) {
	proto := &binfield.IntegerProto{
		Name: "len", Bits: 8, Endian: binfield.BigEndian,
		Value: evalctx.Const{Value: int64(3)},
	}
	f, err := proto.Instantiate(nil, nil)
	require.NoError(t, err)

	err = f.Assign(int64(9))
	require.Error(t, err)
	assert.True(t, errors.Is(err, binerr.ErrInvalidAssignment))
}

func TestBitFieldAlwaysBitAlignedRegardlessOfWidth(t *testing.T) {
	proto := &binfield.BitFieldProto{Name: "b", Bits: 8, Endian: bitio.LittleEndian}
	f, err := proto.Instantiate(uint64(5), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), f.NumBits())

	// Inside a Record, an 8-bit BitField between two 4-bit ones does not
	// force realignment, so the three pack into two bytes.
	rec := &binfield.RecordProto{
		Name: "packed",
		Fields: []binfield.NamedFieldProto{
			{Name: "lo", Proto: &binfield.BitFieldProto{Name: "lo", Bits: 4}},
			{Name: "mid", Proto: &binfield.BitFieldProto{Name: "mid", Bits: 8}},
			{Name: "hi", Proto: &binfield.BitFieldProto{Name: "hi", Bits: 4}},
		},
	}
	r, err := rec.Instantiate(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), binfield.NumBytes(r))

	var buf bytes.Buffer
	require.NoError(t, r.Write(bitio.NewWriter(&buf)))
	assert.Len(t, buf.Bytes(), 2)
}

func TestFloat32RoundTrip(t *testing.T) {
	proto := &binfield.FloatProto{Name: "f", Bits: 32, Endian: binfield.BigEndian}
	f, err := proto.Instantiate(float64(3.5), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(bitio.NewWriter(&buf)))

	f2, err := proto.Instantiate(nil, nil)
	require.NoError(t, err)
	require.NoError(t, f2.Read(bitio.NewReader(bytes.NewReader(buf.Bytes()))))
	assert.InDelta(t, 3.5, f2.Snapshot().(float32), 0.0001)
}

func TestClearResetsToInitialValue(t *testing.T) {
	proto := &binfield.IntegerProto{
		Name: "n", Bits: 8, Endian: binfield.BigEndian,
		InitialValue: evalctx.Const{Value: int64(7)},
	}
	f, err := proto.Instantiate(nil, nil)
	require.NoError(t, err)
	assert.True(t, f.IsClear())

	require.NoError(t, f.Assign(int64(99)))
	assert.False(t, f.IsClear())

	f.Clear()
	assert.True(t, f.IsClear())
	assert.Equal(t, uint64(7), f.Snapshot())
}
