package bitio_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binstruct/binstruct/bitio"
)

func TestReadBytesFlushesPendingBits(t *testing.T) {
	s := bitio.NewReader(bytes.NewReader([]byte{0xFF, 0x01, 0x02}))

	v, err := s.ReadBits(3, bitio.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint64(0b111), v)

	b, err := s.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, b)
}

func TestWriteBitsLittleEndianPacksScenario3(t *testing.T) {
	var buf bytes.Buffer
	s := bitio.NewWriter(&buf)

	require.NoError(t, s.WriteBits(1, 1, bitio.LittleEndian)) // a
	require.NoError(t, s.WriteBits(2, 2, bitio.LittleEndian)) // b
	require.NoError(t, s.Flush())                             // byte-aligned boundary before c
	require.NoError(t, s.WriteBytes([]byte{3}))                // c
	require.NoError(t, s.WriteBits(1, 1, bitio.LittleEndian))  // d
	require.NoError(t, s.Flush())

	assert.Equal(t, []byte{0x05, 0x03, 0x01}, buf.Bytes())
}

func TestReadBitsLittleEndianUnpacksScenario3(t *testing.T) {
	s := bitio.NewReader(bytes.NewReader([]byte{0x05, 0x03, 0x01}))

	a, err := s.ReadBits(1, bitio.LittleEndian)
	require.NoError(t, err)
	b, err := s.ReadBits(2, bitio.LittleEndian)
	require.NoError(t, err)
	require.NoError(t, s.ResumeByteAlignment())
	c, err := s.ReadBytes(1)
	require.NoError(t, err)
	d, err := s.ReadBits(1, bitio.LittleEndian)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), a)
	assert.Equal(t, uint64(2), b)
	assert.Equal(t, byte(3), c[0])
	assert.Equal(t, uint64(1), d)
}

func TestBigEndianBitOrderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	require.NoError(t, w.WriteBits(0b110, 3, bitio.BigEndian))
	require.NoError(t, w.WriteBits(0b01010, 5, bitio.BigEndian))
	assert.Equal(t, []byte{0xCA}, buf.Bytes())

	r := bitio.NewReader(bytes.NewReader(buf.Bytes()))
	hi, err := r.ReadBits(3, bitio.BigEndian)
	require.NoError(t, err)
	lo, err := r.ReadBits(5, bitio.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint64(0b110), hi)
	assert.Equal(t, uint64(0b01010), lo)
}

func TestShortReadOnExhaustedStream(t *testing.T) {
	s := bitio.NewReader(bytes.NewReader([]byte{0x01}))
	_, err := s.ReadBytes(2)
	assert.Error(t, err)
}

func TestOffsetTracksWholeBytes(t *testing.T) {
	s := bitio.NewReader(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
	_, err := s.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Offset())
}

func TestWriteBytesFlushesPendingBitsWithPadding(t *testing.T) {
	var buf bytes.Buffer
	s := bitio.NewWriter(&buf)
	require.NoError(t, s.WriteBits(0b101, 3, bitio.BigEndian))
	require.NoError(t, s.WriteBytes([]byte{0xFF}))
	assert.Equal(t, []byte{0b10100000, 0xFF}, buf.Bytes())
}
