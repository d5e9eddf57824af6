package utils

import (
	"crypto/rand"
	"io"
	"runtime"
)

var RandReader io.Reader = rand.Reader

// SecureRandomBytes generates n cryptographically secure random bytes.
// It uses crypto/rand, which relies on the operating system's CSPRNG.
func SecureRandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := io.ReadFull(RandReader, buf)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Zeroize overwrites a byte slice with zeros.
// Uses runtime.KeepAlive to prevent compiler optimization from eliminating the stores.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
