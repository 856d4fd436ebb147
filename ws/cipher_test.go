package ws

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"
)

func TestCipherInvolution(t *testing.T) {
	mask := [4]byte{0xde, 0xad, 0xbe, 0xef}
	for _, n := range []int{0, 1, 3, 4, 7, 8, 9, 15, 16, 31, 64, 125, 1000} {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			payload := make([]byte, n)
			rand.New(rand.NewSource(int64(n))).Read(payload)
			orig := append([]byte(nil), payload...)

			Cipher(payload, mask, 0)
			if n > 0 && bytes.Equal(payload, orig) {
				// Not guaranteed for adversarial inputs, but random
				// bytes XORed with a non-zero key must change.
				t.Errorf("masking did not change the payload")
			}
			Cipher(payload, mask, 0)
			if !bytes.Equal(payload, orig) {
				t.Errorf("masking twice did not restore the payload")
			}
		})
	}
}

func TestCipherMatchesReference(t *testing.T) {
	mask := [4]byte{0x11, 0x22, 0x33, 0x44}
	payload := make([]byte, 133)
	rand.New(rand.NewSource(133)).Read(payload)

	exp := make([]byte, len(payload))
	for i := range payload {
		exp[i] = payload[i] ^ mask[i%4]
	}

	Cipher(payload, mask, 0)
	if !bytes.Equal(payload, exp) {
		t.Fatalf("fast path disagrees with the byte-by-byte reference")
	}
}

func TestCipherChunkedOffsets(t *testing.T) {
	mask := [4]byte{0x01, 0x02, 0x03, 0x04}
	whole := make([]byte, 100)
	rand.New(rand.NewSource(100)).Read(whole)

	chunked := append([]byte(nil), whole...)
	for _, split := range []int{0, 1, 2, 3, 5, 17, 50} {
		t.Run(fmt.Sprintf("split=%d", split), func(t *testing.T) {
			copy(chunked, whole)
			Cipher(chunked[:split], mask, 0)
			Cipher(chunked[split:], mask, split)

			exp := append([]byte(nil), whole...)
			Cipher(exp, mask, 0)

			if !bytes.Equal(chunked, exp) {
				t.Errorf("chunked ciphering with offset differs from one-shot")
			}
		})
	}
}

func BenchmarkCipher(b *testing.B) {
	mask := [4]byte{0x11, 0x22, 0x33, 0x44}
	payload := make([]byte, 4096)
	b.SetBytes(int64(len(payload)))
	for i := 0; i < b.N; i++ {
		Cipher(payload, mask, 0)
	}
}
