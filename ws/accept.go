package ws

import (
	"crypto/sha1"
	"encoding/base64"
	"hash"
	"sync"
)

// AcceptSize is the length of a Sec-WebSocket-Accept value:
// base64.StdEncoding.EncodedLen(sha1.Size).
const AcceptSize = 28

// webSocketMagic is the GUID every accept value is derived with.
// RFC 6455 section 1.3.
var webSocketMagic = []byte("258EAFA5-E914-47DA-95CA-C5AB0DC85B11")

var sha1Pool sync.Pool

func acquireSha1() hash.Hash {
	if h := sha1Pool.Get(); h != nil {
		return h.(hash.Hash)
	}
	return sha1.New()
}

func releaseSha1(h hash.Hash) {
	h.Reset()
	sha1Pool.Put(h)
}

// MakeAccept derives the Sec-WebSocket-Accept value for the given
// client key: the standard base64 encoding of the SHA-1 digest of the
// key bytes concatenated with the protocol GUID.
//
// The key is untrusted client input of arbitrary length; it is hashed
// exactly as received, without base64 validation, since the derivation
// is what proves the server speaks WebSocket, not the key's shape.
func MakeAccept(key []byte) string {
	sha := acquireSha1()
	defer releaseSha1(sha)

	sha.Write(key)
	sha.Write(webSocketMagic)

	var sum [sha1.Size]byte
	var dst [AcceptSize]byte
	base64.StdEncoding.Encode(dst[:], sha.Sum(sum[:0]))

	return string(dst[:])
}
