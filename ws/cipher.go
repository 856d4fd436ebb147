package ws

import "encoding/binary"

// Cipher applies the XOR masking cipher to payload using mask.
// Offset is the number of payload bytes already ciphered in previous
// calls; it selects the mask byte the first byte of payload lines up
// with, which allows ciphering chunked data.
//
// The same transformation masks and unmasks: applying Cipher twice with
// the same arguments yields the original payload.
func Cipher(payload []byte, mask [4]byte, offset int) {
	n := len(payload)
	if n < 16 {
		for i := 0; i < n; i++ {
			payload[i] ^= mask[(offset+i)%4]
		}
		return
	}

	// Rotate the mask so it can be applied 8 bytes at a time. The
	// little-endian load/store pair keeps byte i XORed with key byte i.
	var key [8]byte
	for i := range key {
		key[i] = mask[(offset+i)%4]
	}
	k := binary.LittleEndian.Uint64(key[:])

	i := 0
	for ; i+8 <= n; i += 8 {
		v := binary.LittleEndian.Uint64(payload[i:])
		binary.LittleEndian.PutUint64(payload[i:], v^k)
	}
	for ; i < n; i++ {
		payload[i] ^= mask[(offset+i)%4]
	}
}
