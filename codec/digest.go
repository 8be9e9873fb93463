package codec

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/wippyai/tinypacks/value"
)

// Hash is a 32-byte BLAKE3 digest of a packed value.
type Hash [32]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// valueDomainKey separates value digests from any other BLAKE3 use of the
// same bytes. Changing it invalidates every stored digest.
var valueDomainKey = [32]byte{
	't', 'i', 'n', 'y', 'p', 'a', 'c', 'k', 's', '.', 'v', 'a', 'l', 'u', 'e', 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Digest hashes the double-precision encoding of v. Logically equal values
// have equal digests because encoding is deterministic.
func Digest(v value.Value) (Hash, error) {
	buf := getBuf()
	defer putBuf(buf)

	var err error
	*buf, err = doubleEncoder.Append((*buf)[:0], v)
	if err != nil {
		return Hash{}, err
	}
	return DigestBytes(*buf), nil
}

// DigestBytes hashes an already packed buffer in the value domain.
func DigestBytes(packed []byte) Hash {
	hasher, err := blake3.NewKeyed(valueDomainKey[:])
	if err != nil {
		panic("codec: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(packed)
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h
}
