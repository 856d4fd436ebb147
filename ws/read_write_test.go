package ws

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	for _, op := range []OpCode{OpText, OpBinary, OpPing, OpPong, OpClose} {
		for _, n := range []int{0, 1, 125, 126, 65535, 65536} {
			if op.IsControl() && n > MaxControlFramePayloadSize {
				continue
			}
			t.Run(fmt.Sprintf("op=0x%02x/len=%d", byte(op), n), func(t *testing.T) {
				payload := make([]byte, n)
				rand.New(rand.NewSource(int64(n))).Read(payload)

				exp := NewFrame(op, payload)
				bts := MustCompileFrame(exp)

				act, err := ReadFrame(bytes.NewReader(bts))
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if act.Header.OpCode != op {
					t.Errorf("opcode = 0x%02x; want 0x%02x", byte(act.Header.OpCode), byte(op))
				}
				if !act.Header.Fin {
					t.Errorf("fin bit is not set")
				}
				if act.Header.Length != int64(n) {
					t.Errorf("length = %d; want %d", act.Header.Length, n)
				}
				if !bytes.Equal(act.Payload, payload) {
					t.Errorf("payload bytes differ from written ones")
				}
			})
		}
	}
}

func TestMaskedFrameRoundTrip(t *testing.T) {
	mask := [4]byte{0x11, 0x22, 0x33, 0x44}
	for _, n := range []int{0, 1, 5, 125, 126, 65536} {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			payload := make([]byte, n)
			rand.New(rand.NewSource(int64(n))).Read(payload)
			orig := append([]byte(nil), payload...)

			f := MaskFrameInPlaceWith(NewBinaryFrame(payload), mask)
			bts := MustCompileFrame(f)

			act, err := ReadFrame(bytes.NewReader(bts))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !act.Header.Masked {
				t.Errorf("mask bit is not set")
			}
			if act.Header.Mask != mask {
				t.Errorf("mask = % x; want % x", act.Header.Mask, mask)
			}
			if !bytes.Equal(act.Payload, orig) {
				t.Errorf("decoded payload is not unmasked back to the original")
			}
		})
	}
}

func TestPutHeaderMinimalEncoding(t *testing.T) {
	for _, test := range []struct {
		length  int64
		expSize int
		expByte byte // second header byte (length marker)
		expExt  []byte
	}{
		{124, 2, 124, nil},
		{125, 2, 125, nil},
		{126, 4, 126, []byte{0x00, 0x7e}},
		{130, 4, 126, []byte{0x00, 0x82}},
		{65535, 4, 126, []byte{0xff, 0xff}},
		{65536, 10, 127, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00}},
		{70000, 10, 127, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x11, 0x70}},
	} {
		t.Run(fmt.Sprintf("len=%d", test.length), func(t *testing.T) {
			h := Header{Fin: true, OpCode: OpText, Length: test.length}
			var b [MaxHeaderSize]byte
			n, err := PutHeader(b[:], h)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != test.expSize {
				t.Fatalf("header size = %d; want %d", n, test.expSize)
			}
			if b[1] != test.expByte {
				t.Errorf("length byte = %d; want %d", b[1], test.expByte)
			}
			if test.expExt != nil && !bytes.Equal(b[2:n], test.expExt) {
				t.Errorf("extended length = % x; want % x", b[2:n], test.expExt)
			}
		})
	}
}

func TestReadHeaderPeerClosed(t *testing.T) {
	// Exhausted before the 2-byte base header: clean disconnect, which
	// must be distinguishable from a malformed frame.
	_, err := ReadHeader(bytes.NewReader(nil))
	if err != ErrPeerClosed {
		t.Fatalf("error = %v; want ErrPeerClosed", err)
	}
}

func TestReadHeaderTruncated(t *testing.T) {
	for i, data := range [][]byte{
		{0x81},                   // half of the base header
		{0x81, 0x7e},             // extended 16-bit length missing
		{0x81, 0x7e, 0x01},       // extended 16-bit length cut short
		{0x81, 0xfe, 0x00, 0x05}, // mask key missing
		{0x81, 0x7f, 0x00, 0x00}, // extended 64-bit length cut short
	} {
		t.Run(fmt.Sprintf("#%d", i), func(t *testing.T) {
			_, err := ReadHeader(bytes.NewReader(data))
			if err != ErrTruncatedFrame {
				t.Errorf("error = %v; want ErrTruncatedFrame", err)
			}
		})
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	bts := MustCompileFrame(NewTextFrame("hello"))
	_, err := ReadFrame(bytes.NewReader(bts[:len(bts)-2]))
	if err != ErrTruncatedFrame {
		t.Fatalf("error = %v; want ErrTruncatedFrame", err)
	}
}

func TestReadHeaderLengthMSB(t *testing.T) {
	data := []byte{0x81, 0x7f, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	_, err := ReadHeader(bytes.NewReader(data))
	if err != ErrHeaderLengthMSB {
		t.Fatalf("error = %v; want ErrHeaderLengthMSB", err)
	}
}

func TestReadHeaderNonMinimalLength(t *testing.T) {
	// An encoder always emits the minimal form, but a decoder accepts
	// any form: 5 encoded in the 16-bit extended field must parse.
	data := []byte{0x82, 0x7e, 0x00, 0x05, 'h', 'e', 'l', 'l', 'o'}
	f, err := ReadFrame(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Header.Length != 5 || string(f.Payload) != "hello" {
		t.Fatalf("frame = %+v payload %q; want length 5 payload \"hello\"", f.Header, f.Payload)
	}
}

func TestReadHeaderMasked64BitLength(t *testing.T) {
	// Widest header on the wire: 8 extended length bytes plus the
	// 4-byte mask key in the follow-up read.
	data := []byte{
		0x82, 0xff,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00,
		0x11, 0x22, 0x33, 0x44,
	}
	h, err := ReadHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Length != 65536 {
		t.Errorf("length = %d; want 65536", h.Length)
	}
	if !h.Masked || h.Mask != [4]byte{0x11, 0x22, 0x33, 0x44} {
		t.Errorf("mask = %v % x; want key 11 22 33 44", h.Masked, h.Mask)
	}
}

func TestPutHeaderLengthOverflow(t *testing.T) {
	var b [MaxHeaderSize]byte
	_, err := PutHeader(b[:], Header{Length: -1})
	if err != ErrHeaderLengthUnexpected {
		t.Fatalf("error = %v; want ErrHeaderLengthUnexpected", err)
	}
}

func BenchmarkReadFrame(b *testing.B) {
	bts := MustCompileFrame(NewTextFrame("hello, world"))
	r := bytes.NewReader(bts)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Reset(bts)
		if _, err := ReadFrame(r); err != nil {
			b.Fatal(err)
		}
	}
}
