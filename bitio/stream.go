// Package bitio provides an extremely low-level toolkit for reading and
// writing a byte stream with an interleaved bit cursor.
//
// bitio wraps a plain io.Reader or io.Writer and tracks a bit-level cursor on
// top of it: byte-aligned operations flush or discard any pending partial
// byte first, and bit-aligned operations accumulate into a one-byte buffer
// that is drained from, or flushed to, the underlying stream as needed.
package bitio

import (
	"io"

	"github.com/binstruct/binstruct/binerr"
)

// Endian selects the order in which bits within a byte are consumed or
// produced by ReadBits/WriteBits. It is independent of the byte order of
// multi-byte integers, which callers compose on top of ReadBits/WriteBits
// themselves.
type Endian int

const (
	// BigEndian consumes/produces the most significant bit of the current
	// byte first.
	BigEndian Endian = iota
	// LittleEndian consumes/produces the least significant bit of the
	// current byte first.
	LittleEndian
)

// Stream is a bit-cursor adapter over a byte-oriented source or sink. A
// Stream is either a reader (backed by an io.Reader) or a writer (backed by
// an io.Writer); calling a read operation on a writer Stream, or vice versa,
// panics, as this indicates a programming error in the caller (the schema
// engine never does this).
type Stream struct {
	r io.Reader
	w io.Writer

	offset int64 // whole bytes consumed/emitted, not counting the pending partial byte

	pendingBits int   // number of valid bits currently buffered, 0..7
	bitBuf      uint8 // buffered bits, occupying the low pendingBits bits
	padEndian   Endian // bit order in effect for the byte currently being accumulated (write side only)
}

// NewReader returns a Stream that reads from r.
func NewReader(r io.Reader) *Stream {
	return &Stream{r: r}
}

// NewWriter returns a Stream that writes to w.
func NewWriter(w io.Writer) *Stream {
	return &Stream{w: w}
}

// Offset returns the number of whole bytes consumed or emitted so far. It
// does not count a pending partial byte that has not yet been flushed or
// discarded.
func (s *Stream) Offset() int64 {
	if s.r != nil && s.pendingBits > 0 {
		// The partially consumed byte was already counted when it was loaded.
		return s.offset - 1
	}
	return s.offset
}

// ReadBytes reads exactly n bytes, discarding any pending partial bits first
// (an implicit flush-on-read). It returns binerr.ShortReadError if the
// underlying reader is exhausted first.
func (s *Stream) ReadBytes(n int) ([]byte, error) {
	s.pendingBits = 0
	s.bitBuf = 0

	if n == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, n)
	got, err := io.ReadFull(s.r, buf)
	s.offset += int64(got)
	if err != nil {
		return nil, &binerr.ShortReadError{Field: "bytes", Want: n, Got: got}
	}
	return buf, nil
}

// ReadBits reads an n-bit (0 < n <= 64) unsigned integer, drawing from the
// pending bit buffer and replenishing one byte at a time from the underlying
// reader as the buffer is exhausted. endian controls the order in which bits
// within each freshly-read byte are consumed.
func (s *Stream) ReadBits(n int, endian Endian) (uint64, error) {
	if n <= 0 {
		return 0, nil
	}

	var value uint64
	remaining := n
	shift := 0

	for remaining > 0 {
		if s.pendingBits == 0 {
			b, err := s.readOneByte()
			if err != nil {
				return 0, err
			}
			s.bitBuf = b
			s.pendingBits = 8
		}

		take := remaining
		if take > s.pendingBits {
			take = s.pendingBits
		}

		var bits uint64
		if endian == BigEndian {
			// The first-consumed bits of a freshly loaded byte are its high
			// bits; whatever remains always occupies the low pendingBits
			// bits of bitBuf, so no further bookkeeping is needed here.
			bits = uint64(s.bitBuf>>(s.pendingBits-take)) & ((1 << take) - 1)
			value = value<<take | bits
		} else {
			bits = uint64(s.bitBuf) & ((1 << take) - 1)
			s.bitBuf >>= take
			value |= bits << shift
		}
		s.pendingBits -= take
		shift += take
		remaining -= take
	}

	return value, nil
}

func (s *Stream) readOneByte() (byte, error) {
	buf := make([]byte, 1)
	got, err := io.ReadFull(s.r, buf)
	s.offset += int64(got)
	if err != nil {
		return 0, &binerr.ShortReadError{Field: "bits", Want: 1, Got: got}
	}
	return buf[0], nil
}

// WriteBytes flushes any pending bit buffer (zero-padded to a byte boundary)
// and writes b verbatim.
func (s *Stream) WriteBytes(b []byte) error {
	if err := s.Flush(); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	n, err := s.w.Write(b)
	s.offset += int64(n)
	if err != nil || n != len(b) {
		return &binerr.ShortWriteError{Field: "bytes", Want: len(b), Got: n}
	}
	return nil
}

// WriteBits accumulates the low n bits of v into the pending bit buffer,
// emitting whole bytes to the underlying writer as they fill, in the bit
// order selected by endian.
func (s *Stream) WriteBits(v uint64, n int, endian Endian) error {
	if n <= 0 {
		return nil
	}

	if s.pendingBits == 0 {
		s.padEndian = endian
	}

	remaining := n
	for remaining > 0 {
		free := 8 - s.pendingBits
		take := remaining
		if take > free {
			take = free
		}

		var bits uint8
		if endian == BigEndian {
			bits = uint8((v >> (remaining - take)) & ((1 << take) - 1))
			s.bitBuf = s.bitBuf<<take | bits
		} else {
			bits = uint8(v & ((1 << take) - 1))
			s.bitBuf |= bits << s.pendingBits
			v >>= take
		}
		s.pendingBits += take
		remaining -= take

		if s.pendingBits == 8 {
			if err := s.emitByte(s.bitBuf); err != nil {
				return err
			}
			s.bitBuf = 0
			s.pendingBits = 0
		}
	}

	return nil
}

func (s *Stream) emitByte(b byte) error {
	n, err := s.w.Write([]byte{b})
	s.offset += int64(n)
	if err != nil || n != 1 {
		return &binerr.ShortWriteError{Field: "bits", Want: 1, Got: n}
	}
	return nil
}

// Flush forces the pending bit buffer to a byte boundary. On a writer Stream
// this zero-pads the remaining bits of the current byte and emits it. On a
// reader Stream it discards the pending bits without consuming further input.
func (s *Stream) Flush() error {
	if s.pendingBits == 0 {
		return nil
	}
	if s.w != nil {
		b := s.bitBuf
		if s.padEndian == BigEndian {
			// The accumulated bits represent a big-endian (MSB-first) value
			// built up in the low bits of the register; shifting it into the
			// high bits of the byte is what leaves the missing trailing bits
			// as zero padding rather than leading zero padding.
			pad := 8 - s.pendingBits
			b <<= pad
		}
		// Little-endian accumulation already places bits starting at the
		// low end of the byte, so the unfilled high bits are zero padding
		// with no shift required.
		if err := s.emitByte(b); err != nil {
			return err
		}
	}
	s.bitBuf = 0
	s.pendingBits = 0
	return nil
}

// ResumeByteAlignment discards a pending read buffer, or zero-pads and
// flushes a pending write buffer, without performing any further I/O beyond
// that. It is the primitive operation behind the schema directive that lets
// a declarer splice bit fields between byte-aligned segments mid-record.
func (s *Stream) ResumeByteAlignment() error {
	if s.r != nil {
		s.bitBuf = 0
		s.pendingBits = 0
		return nil
	}
	return s.Flush()
}

// IsWriter reports whether the Stream was constructed with NewWriter.
func (s *Stream) IsWriter() bool { return s.w != nil }

// IsReader reports whether the Stream was constructed with NewReader.
func (s *Stream) IsReader() bool { return s.r != nil }
