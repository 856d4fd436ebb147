package ws

import (
	"encoding/binary"
	"errors"
	"io"
)

// Errors returned by the frame reader.
var (
	// ErrPeerClosed means the byte source was exhausted before any part
	// of a frame header arrived. It is the clean end of a receive loop,
	// not a protocol fault: the peer simply went away between frames.
	ErrPeerClosed = errors.New("ws: peer closed connection")

	// ErrTruncatedFrame means the byte source ended in the middle of a
	// frame. Unlike ErrPeerClosed this is a malformed-input condition.
	ErrTruncatedFrame = errors.New("ws: truncated frame")

	ErrHeaderLengthMSB        = errors.New("ws: header error: the most significant bit must be 0")
	ErrHeaderLengthUnexpected = errors.New("ws: header error: unexpected payload length")
)

// ReadHeader reads a frame header from r.
//
// The header is consumed in fixed stages: the 2-byte base header first,
// then the 2- or 8-byte extended length if the 7-bit field holds 126 or
// 127, then the 4-byte mask key if the mask bit is set. Every stage is
// a separate read on r, so a reader that suspends per call suspends per
// stage. A decoder accepts any of the three length forms regardless of
// the value, and accepts both masked and unmasked frames.
func ReadHeader(r io.Reader) (h Header, err error) {
	// 2 bytes for the base header, with enough capacity for the widest
	// follow-up read (8 length bytes plus the 4-byte mask).
	bts := make([]byte, 2, 12)

	if _, err = io.ReadFull(r, bts); err != nil {
		switch err {
		case io.EOF:
			err = ErrPeerClosed
		case io.ErrUnexpectedEOF:
			err = ErrTruncatedFrame
		}
		return
	}

	h.Fin = bts[0]&bit0 != 0
	h.Rsv = (bts[0] & 0x70) >> 4
	h.OpCode = OpCode(bts[0] & 0x0f)
	h.Masked = bts[1]&bit0 != 0

	var extra int
	if h.Masked {
		extra += 4
	}
	length := bts[1] & 0x7f
	switch {
	case length < 126:
		h.Length = int64(length)
	case length == 126:
		extra += 2
	default: // 127
		extra += 8
	}
	if extra == 0 {
		return
	}

	bts = bts[:extra]
	if _, err = io.ReadFull(r, bts); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = ErrTruncatedFrame
		}
		return
	}

	switch length {
	case 126:
		h.Length = int64(binary.BigEndian.Uint16(bts))
		bts = bts[2:]
	case 127:
		if bts[0]&0x80 != 0 {
			err = ErrHeaderLengthMSB
			return
		}
		h.Length = int64(binary.BigEndian.Uint64(bts))
		bts = bts[8:]
	}

	if h.Masked {
		copy(h.Mask[:], bts)
	}

	return
}

// ReadFrame reads a whole frame from r. If the frame is masked, the
// payload is unmasked in place after it has been read completely, so
// the returned payload is always plain bytes.
func ReadFrame(r io.Reader) (f Frame, err error) {
	f.Header, err = ReadHeader(r)
	if err != nil {
		return
	}

	if f.Header.Length > 0 {
		// int conversion is safe: ReadHeader rejects lengths with the
		// most significant bit set.
		f.Payload = make([]byte, int(f.Header.Length))
		if _, err = io.ReadFull(r, f.Payload); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				err = ErrTruncatedFrame
			}
			return
		}
	}

	if f.Header.Masked {
		Cipher(f.Payload, f.Header.Mask, 0)
	}

	return
}
