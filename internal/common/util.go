package common

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
)

// MakeRandHexString generates a random hexadecimal string from size random
// bytes, so the result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RandomPositiveInt31 returns a uniformly random integer in [1, 2^31-1].
func RandomPositiveInt31() (int64, error) {
	var b [4]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			return 0, err
		}
		v := int64(binary.BigEndian.Uint32(b[:]) & 0x7fffffff)
		if v > 0 {
			return v, nil
		}
	}
}
