package ws

import (
	"bytes"
	"encoding/binary"
)

// MaxControlFramePayloadSize is the payload limit for control frames.
// RFC 6455 section 5.5: control frames must have a payload of 125 bytes
// or less and must not be fragmented.
const MaxControlFramePayloadSize = 125

// OpCode represents an operation code.
type OpCode byte

// Operation codes defined by RFC 6455 section 5.2.
const (
	OpContinuation OpCode = 0x0
	OpText         OpCode = 0x1
	OpBinary       OpCode = 0x2
	OpClose        OpCode = 0x8
	OpPing         OpCode = 0x9
	OpPong         OpCode = 0xa
)

// IsControl reports whether c is a control operation code.
// Control frames are identified by opcodes with the most significant
// bit of the (4-bit) opcode set.
func (c OpCode) IsControl() bool {
	return c&0x8 != 0
}

// IsData reports whether c is a data operation code.
func (c OpCode) IsData() bool {
	return c&0x8 == 0
}

// IsReserved reports whether c is reserved for future use.
// RFC 6455: %x3-7 are reserved for further non-control frames,
// %xB-F for further control frames.
func (c OpCode) IsReserved() bool {
	return (0x3 <= c && c <= 0x7) || (0xb <= c && c <= 0xf)
}

// StatusCode is the encoded reason for closure of a websocket
// connection. See RFC 6455 section 7.4.
type StatusCode uint16

// Status codes defined by RFC 6455 section 7.4.1.
const (
	StatusNormalClosure           StatusCode = 1000
	StatusGoingAway               StatusCode = 1001
	StatusProtocolError           StatusCode = 1002
	StatusUnsupportedData         StatusCode = 1003
	StatusNoStatusRcvd            StatusCode = 1005
	StatusAbnormalClosure         StatusCode = 1006
	StatusInvalidFramePayloadData StatusCode = 1007
	StatusPolicyViolation         StatusCode = 1008
	StatusMessageTooBig           StatusCode = 1009
	StatusInternalServerError     StatusCode = 1011
)

// Empty reports whether the code carries no meaning, that is, whether
// it is the zero value left by a close frame without a payload.
func (s StatusCode) Empty() bool {
	return s == 0
}

// Header represents a websocket frame header.
// See RFC 6455 section 5.2.
type Header struct {
	Fin    bool
	Rsv    byte
	OpCode OpCode
	Masked bool
	Mask   [4]byte
	Length int64
}

// Frame represents a websocket frame.
type Frame struct {
	Header  Header
	Payload []byte
}

// NewFrame creates a final (FIN=1) frame with the given operation code
// and payload bytes. The payload is kept as is, without copying.
func NewFrame(op OpCode, p []byte) Frame {
	return Frame{
		Header: Header{
			Fin:    true,
			OpCode: op,
			Length: int64(len(p)),
		},
		Payload: p,
	}
}

// NewTextFrame creates a text frame with s as payload.
// The bytes of s are copied into the returned frame.
func NewTextFrame(s string) Frame {
	return NewFrame(OpText, []byte(s))
}

// NewBinaryFrame creates a binary frame with p as payload.
func NewBinaryFrame(p []byte) Frame {
	return NewFrame(OpBinary, p)
}

// NewPongFrame creates a pong frame with p as payload.
func NewPongFrame(p []byte) Frame {
	return NewFrame(OpPong, p)
}

// NewCloseFrame creates a close frame with the given closure code and
// reason. The reason is cropped to fit the control frame payload limit.
func NewCloseFrame(code StatusCode, reason string) Frame {
	return NewFrame(OpClose, NewCloseFrameData(code, reason))
}

// NewCloseFrameData makes the byte representation of code and reason.
//
// The returned slice is at most MaxControlFramePayloadSize bytes: the
// two-byte status code is always intact, the reason is cropped to the
// remaining 123 bytes if it is longer.
func NewCloseFrameData(code StatusCode, reason string) []byte {
	n := min(2+len(reason), MaxControlFramePayloadSize)
	p := make([]byte, n)
	binary.BigEndian.PutUint16(p, uint16(code))
	copy(p[2:], reason)
	return p
}

// ParseCloseFrameData parses a close frame status code and closure
// reason if any. If the payload carries no status code, the empty
// status code is returned (code.Empty()) with an empty reason; this
// deliberately avoids mapping an absent code to 1005, since 1005 must
// never appear on the wire.
func ParseCloseFrameData(payload []byte) (code StatusCode, reason string) {
	if len(payload) < 2 {
		return
	}
	code = StatusCode(binary.BigEndian.Uint16(payload))
	reason = string(payload[2:])
	return
}

// MaskFrameInPlaceWith masks the frame payload with the given mask and
// returns the frame with its Masked header field set. The payload is
// ciphered in place.
func MaskFrameInPlaceWith(f Frame, m [4]byte) Frame {
	f.Header.Masked = true
	f.Header.Mask = m
	Cipher(f.Payload, m, 0)
	return f
}

// CompileFrame returns the byte representation of the given frame.
func CompileFrame(f Frame) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, MaxHeaderSize+len(f.Payload)))
	err := WriteFrame(buf, f)
	return buf.Bytes(), err
}

// MustCompileFrame is like CompileFrame but panics if the frame cannot
// be encoded.
func MustCompileFrame(f Frame) []byte {
	bts, err := CompileFrame(f)
	if err != nil {
		panic(err)
	}
	return bts
}
