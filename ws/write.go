package ws

import (
	"encoding/binary"
	"io"
)

const (
	bit0 = 0x80

	len7  = int64(125)
	len16 = int64(^uint16(0))
	len64 = int64(^uint64(0) >> 1)
)

// MaxHeaderSize is the size of the largest possible frame header:
// 2 base bytes, 8 extended length bytes and a 4 byte mask key.
const MaxHeaderSize = 14

// HeaderSize returns the number of bytes the wire representation of h
// occupies.
func HeaderSize(h Header) int {
	n := 2
	switch {
	case h.Length <= len7:
	case h.Length <= len16:
		n += 2
	default:
		n += 8
	}
	if h.Masked {
		n += 4
	}
	return n
}

// PutHeader encodes h into bts and returns the number of bytes written.
// The payload length is always emitted in its minimal form: values
// below 126 use the 7-bit field, values below 65536 the 2-byte extended
// field and anything larger the 8-byte extended field. The buffer must
// hold at least HeaderSize(h) bytes or PutHeader panics.
func PutHeader(bts []byte, h Header) (int, error) {
	var lenByte byte
	switch {
	case h.Length < 0 || h.Length > len64:
		return 0, ErrHeaderLengthUnexpected
	case h.Length <= len7:
		lenByte = byte(h.Length)
	case h.Length <= len16:
		lenByte = 126
	default:
		lenByte = 127
	}

	bts[0] = byte(h.OpCode) | h.Rsv<<4
	if h.Fin {
		bts[0] |= bit0
	}
	bts[1] = lenByte

	n := 2
	switch lenByte {
	case 126:
		binary.BigEndian.PutUint16(bts[n:], uint16(h.Length))
		n += 2
	case 127:
		binary.BigEndian.PutUint64(bts[n:], uint64(h.Length))
		n += 8
	}

	if h.Masked {
		bts[1] |= bit0
		n += copy(bts[n:], h.Mask[:])
	}

	return n, nil
}

// WriteHeader writes the wire representation of h to w.
func WriteHeader(w io.Writer, h Header) error {
	var b [MaxHeaderSize]byte
	n, err := PutHeader(b[:], h)
	if err != nil {
		return err
	}
	_, err = w.Write(b[:n])
	return err
}

// WriteFrame writes f to w, header first, payload as is. Server frames
// built by the New*Frame constructors are never masked; if f.Header
// says otherwise the payload is expected to be ciphered already.
func WriteFrame(w io.Writer, f Frame) error {
	if err := WriteHeader(w, f.Header); err != nil {
		return err
	}
	_, err := w.Write(f.Payload)
	return err
}
